// Package report parses hospital quality-report XML documents and extracts
// the address and emergency-care participation of a reporting location.
package report

import "encoding/xml"

// Document is one decoded quality report. Element names follow the QB
// document format published by the Gemeinsamer Bundesausschuss; fields are
// pointers so absent sections are distinguishable from empty ones.
type Document struct {
	XMLName       xml.Name
	Hospital      *hospitalElem      `xml:"Krankenhaus"`
	EmergencyCare *emergencyCareElem `xml:"Teilnahme_Notfallversorgung"`
}

// hospitalElem holds the location containers. A report describes either a
// single site or one entry of a multi-site facility, never both.
type hospitalElem struct {
	MultiSite  *multiSiteElem  `xml:"Mehrere_Standorte"`
	SingleSite *singleSiteElem `xml:"Ein_Standort"`
}

type multiSiteElem struct {
	// Contacts keeps every Standortkontaktdaten entry; one per report is
	// expected and only the first is used.
	Contacts []locationElem `xml:"Standortkontaktdaten"`
}

type singleSiteElem struct {
	Contact *locationElem `xml:"Krankenhauskontaktdaten"`
}

// locationElem carries the identifiers and contact data of one site.
type locationElem struct {
	IK             *string     `xml:"IK"`
	LocationNumber *string     `xml:"Standortnummer"`
	Access         *accessElem `xml:"Kontakt_Zugang"`
}

type accessElem struct {
	Street      *string `xml:"Strasse"`
	HouseNumber *string `xml:"Hausnummer"`
	ZipCode     *string `xml:"Postleitzahl"`
	City        *string `xml:"Ort"`
}

type emergencyCareElem struct {
	Level *participationElem `xml:"Teilnahme_Notfallstufe"`
}

// participationElem is the four-way participation marker. Exactly one child
// is expected; which one determines the classification.
type participationElem struct {
	Declined       *emptyElem    `xml:"Keine_Teilnahme_Notfallversorgung"`
	NotYetArranged *emptyElem    `xml:"Notfallstufe_Nichtteilnahme_noch_nicht_vereinbart"`
	Assigned       *assignedElem `xml:"Notfallstufe_zugeordnet"`
}

type emptyElem struct{}

// assignedElem collects the tier elements in document order. The tag names
// themselves are the tier names, and their order is the source ranking.
type assignedElem struct {
	Tiers []tierElem `xml:",any"`
}

type tierElem struct {
	XMLName xml.Name
}

// location returns the contact-data element of the reporting location,
// preferring the multi-site container when both are present.
func (d *Document) location() *locationElem {
	if d == nil || d.Hospital == nil {
		return nil
	}
	if d.Hospital.MultiSite != nil {
		if len(d.Hospital.MultiSite.Contacts) == 0 {
			return nil
		}
		return &d.Hospital.MultiSite.Contacts[0]
	}
	if d.Hospital.SingleSite != nil {
		return d.Hospital.SingleSite.Contact
	}
	return nil
}
