package report

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Parse decodes one quality report from r. QB exports are frequently
// declared as ISO-8859-1, so non-UTF-8 charsets are translated via the
// htmlindex registry. Malformed XML is an error; an unrelated but
// well-formed document decodes into an empty Document.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "report: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "report: decode xml")
	}
	return &doc, nil
}

// ParseFile decodes the quality report at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, eris.Wrapf(err, "report: parse %s", path)
	}
	return doc, nil
}
