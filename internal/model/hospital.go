// Package model defines the value objects extracted from quality reports.
package model

import "github.com/rotisserie/eris"

// ReportID uniquely identifies a reporting location: the facility's national
// institution number (IK) plus the location number within that facility.
// Both are read from the document itself, never generated.
type ReportID struct {
	IKNumber   int64 `json:"ik_number"`
	LocationID int64 `json:"location_id"`
}

// Address is the postal address of a reporting location. A partially filled
// Address is never constructed; extraction yields all fields or nothing.
type Address struct {
	ReportID
	Street      string `json:"street"`
	City        string `json:"city"`
	HouseNumber string `json:"house_number"`
	ZipCode     int    `json:"zip_code"`
}

// EmergencyServices describes a location's participation in staged emergency
// care (Notfallstufen). Levels is non-empty exactly when ProvidesServices is
// true, and nil otherwise; order reflects the source document's tier ranking.
type EmergencyServices struct {
	ReportID
	ProvidesServices bool     `json:"provides_services"`
	Levels           []string `json:"levels,omitempty"`
}

// Hospital is one persisted row, keyed by ReportID.
type Hospital struct {
	ReportID
	Street           string   `json:"street"`
	City             string   `json:"city"`
	HouseNumber      string   `json:"house_number"`
	ZipCode          int      `json:"zip_code"`
	ProvidesServices bool     `json:"provides_emergency_services"`
	Levels           []string `json:"levels,omitempty"`
}

// MergeHospital combines an Address and an EmergencyServices record for the
// same location into one row. Both records are required; mismatched IDs are
// rejected so a row never mixes data from two locations.
func MergeHospital(addr *Address, ems *EmergencyServices) (*Hospital, error) {
	if addr == nil || ems == nil {
		return nil, eris.New("model: merge requires both address and emergency services")
	}
	if addr.ReportID != ems.ReportID {
		return nil, eris.Errorf("model: report ID mismatch: address %d/%d vs emergency services %d/%d",
			addr.IKNumber, addr.LocationID, ems.IKNumber, ems.LocationID)
	}
	return &Hospital{
		ReportID:         addr.ReportID,
		Street:           addr.Street,
		City:             addr.City,
		HouseNumber:      addr.HouseNumber,
		ZipCode:          addr.ZipCode,
		ProvidesServices: ems.ProvidesServices,
		Levels:           ems.Levels,
	}, nil
}
