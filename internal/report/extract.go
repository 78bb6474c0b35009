package report

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/qbdaten/qbsync/internal/model"
)

// Participation classifies the Teilnahme_Notfallstufe section of a report.
type Participation int

const (
	// ParticipationMissing means the section or its level marker is absent
	// entirely, as with specialty facilities (Spezialversorgung).
	ParticipationMissing Participation = iota
	// ParticipationDeclined means the location explicitly does not take part.
	ParticipationDeclined
	// ParticipationNotYetArranged means no tier has been agreed on yet.
	ParticipationNotYetArranged
	// ParticipationAssigned means one or more tiers are assigned.
	ParticipationAssigned
	// ParticipationUnrecognized means the section is present but carries
	// none of the known markers.
	ParticipationUnrecognized
)

func (p Participation) String() string {
	switch p {
	case ParticipationMissing:
		return "missing"
	case ParticipationDeclined:
		return "declined"
	case ParticipationNotYetArranged:
		return "not_yet_arranged"
	case ParticipationAssigned:
		return "assigned"
	default:
		return "unrecognized"
	}
}

// ExtractReportID reads the facility IK number and location number from the
// document's location container. Missing nodes or non-numeric identifiers
// fail resolution, which callers treat as "nothing extractable from this
// report" since every record hangs off the ID.
func ExtractReportID(doc *Document) (model.ReportID, error) {
	loc := doc.location()
	if loc == nil {
		return model.ReportID{}, eris.New("report: no location contact data in document")
	}
	if loc.IK == nil {
		return model.ReportID{}, eris.New("report: location has no IK element")
	}
	if loc.LocationNumber == nil {
		return model.ReportID{}, eris.New("report: location has no Standortnummer element")
	}

	ik, err := strconv.ParseInt(strings.TrimSpace(*loc.IK), 10, 64)
	if err != nil {
		return model.ReportID{}, eris.Wrapf(err, "report: non-numeric IK %q", *loc.IK)
	}
	locID, err := strconv.ParseInt(strings.TrimSpace(*loc.LocationNumber), 10, 64)
	if err != nil {
		return model.ReportID{}, eris.Wrapf(err, "report: non-numeric Standortnummer %q", *loc.LocationNumber)
	}

	return model.ReportID{IKNumber: ik, LocationID: locID}, nil
}

// ExtractAddress reads the location's Kontakt_Zugang block. All four fields
// must be present and the postal code numeric; anything less yields no
// Address at all rather than a partial one.
func ExtractAddress(doc *Document) (*model.Address, error) {
	id, err := ExtractReportID(doc)
	if err != nil {
		return nil, err
	}

	zugang := doc.location().Access
	if zugang == nil {
		return nil, eris.New("report: location has no Kontakt_Zugang element")
	}
	switch {
	case zugang.Street == nil:
		return nil, eris.New("report: Kontakt_Zugang has no Strasse element")
	case zugang.City == nil:
		return nil, eris.New("report: Kontakt_Zugang has no Ort element")
	case zugang.HouseNumber == nil:
		return nil, eris.New("report: Kontakt_Zugang has no Hausnummer element")
	case zugang.ZipCode == nil:
		return nil, eris.New("report: Kontakt_Zugang has no Postleitzahl element")
	}

	zip, err := strconv.Atoi(strings.TrimSpace(*zugang.ZipCode))
	if err != nil {
		return nil, eris.Wrapf(err, "report: non-numeric Postleitzahl %q", *zugang.ZipCode)
	}

	return &model.Address{
		ReportID:    id,
		Street:      *zugang.Street,
		City:        *zugang.City,
		HouseNumber: *zugang.HouseNumber,
		ZipCode:     zip,
	}, nil
}

// ExtractEmergencyServices classifies the emergency-care participation of
// the reporting location. Missing, declined, and not-yet-arranged all mean
// the location provides no staged emergency care; assigned tiers are
// returned in document order, untouched.
func ExtractEmergencyServices(doc *Document) (*model.EmergencyServices, error) {
	id, err := ExtractReportID(doc)
	if err != nil {
		return nil, err
	}

	participation, levels := classifyParticipation(doc)
	switch participation {
	case ParticipationMissing, ParticipationDeclined, ParticipationNotYetArranged:
		return &model.EmergencyServices{ReportID: id, ProvidesServices: false}, nil
	case ParticipationAssigned:
		if len(levels) == 0 {
			return nil, eris.New("report: Notfallstufe_zugeordnet has no tier elements")
		}
		return &model.EmergencyServices{ReportID: id, ProvidesServices: true, Levels: levels}, nil
	default:
		return nil, eris.New("report: Teilnahme_Notfallstufe has no recognized participation marker")
	}
}

// classifyParticipation resolves the four-way classification with one
// ordered rule match: missing, declined, not yet arranged, assigned,
// unrecognized. For the assigned case it also returns the ordered tier
// names.
func classifyParticipation(doc *Document) (Participation, []string) {
	if doc == nil || doc.EmergencyCare == nil || doc.EmergencyCare.Level == nil {
		return ParticipationMissing, nil
	}

	level := doc.EmergencyCare.Level
	switch {
	case level.Declined != nil:
		return ParticipationDeclined, nil
	case level.NotYetArranged != nil:
		return ParticipationNotYetArranged, nil
	case level.Assigned != nil:
		levels := make([]string, 0, len(level.Assigned.Tiers))
		for _, tier := range level.Assigned.Tiers {
			levels = append(levels, tier.XMLName.Local)
		}
		return ParticipationAssigned, levels
	default:
		return ParticipationUnrecognized, nil
	}
}
