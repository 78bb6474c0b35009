package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleSite(t *testing.T) {
	doc, err := Parse(strings.NewReader(singleSiteXML))
	require.NoError(t, err)
	require.NotNil(t, doc.Hospital)
	require.NotNil(t, doc.Hospital.SingleSite)
	assert.Nil(t, doc.Hospital.MultiSite)
	require.NotNil(t, doc.Hospital.SingleSite.Contact)
	assert.Equal(t, "260100023", *doc.Hospital.SingleSite.Contact.IK)
}

func TestParse_MultiSite(t *testing.T) {
	doc, err := Parse(strings.NewReader(multiSiteXML))
	require.NoError(t, err)
	require.NotNil(t, doc.Hospital)
	require.NotNil(t, doc.Hospital.MultiSite)
	require.Len(t, doc.Hospital.MultiSite.Contacts, 1)
	assert.Equal(t, "2", *doc.Hospital.MultiSite.Contacts[0].LocationNumber)
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := Parse(strings.NewReader("<Qualitaetsbericht><Krankenhaus>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode xml")
}

func TestParse_UnrelatedRoot(t *testing.T) {
	doc, err := Parse(strings.NewReader("<Lagebericht><Inhalt>x</Inhalt></Lagebericht>"))
	require.NoError(t, err)
	assert.Nil(t, doc.Hospital)
	assert.Nil(t, doc.EmergencyCare)
}

func TestParse_Latin1Charset(t *testing.T) {
	// 0xF6 is "ö" in ISO-8859-1.
	raw := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		"<Qualitaetsbericht><Krankenhaus><Ein_Standort><Krankenhauskontaktdaten>" +
		"<IK>123456789</IK><Standortnummer>1</Standortnummer>" +
		"<Kontakt_Zugang><Strasse>Domstra\xdfe</Strasse><Hausnummer>4</Hausnummer>" +
		"<Postleitzahl>50667</Postleitzahl><Ort>K\xf6ln</Ort></Kontakt_Zugang>" +
		"</Krankenhauskontaktdaten></Ein_Standort></Krankenhaus></Qualitaetsbericht>"

	doc, err := Parse(strings.NewReader(raw))
	require.NoError(t, err)

	addr, err := ExtractAddress(doc)
	require.NoError(t, err)
	assert.Equal(t, "Köln", addr.City)
	assert.Equal(t, "Domstraße", addr.Street)
}

func TestParseFile(t *testing.T) {
	doc, err := ParseFile("testdata/260100023-01-2022-xml.xml")
	require.NoError(t, err)
	require.NotNil(t, doc.Hospital)
	require.NotNil(t, doc.EmergencyCare)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("testdata/does-not-exist.xml")
	require.Error(t, err)
}
