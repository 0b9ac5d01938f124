// File path: internal/property/property.go

// Package property holds the canonical property record shared by every stage
// of the insights pipeline and the normalizer that builds it from loosely
// typed request payloads.
package property

import "errors"

// ErrInvalidPayload reports a property payload that is not a JSON object.
var ErrInvalidPayload = errors.New("invalid property payload")

const (
	DefaultID        = "unknown"
	DefaultName      = "Unnamed Property"
	DefaultAddress   = "Unknown Address"
	DefaultCity      = "Unknown City"
	DefaultState     = "TX"
	DefaultYearBuilt = 0
	DefaultUnits     = 0
	DefaultLevels    = 1
	DefaultSubmarket = "Unknown"
)

// Property is the normalized view of a single multifamily property. JSON keys
// are the canonical inbound aliases so a serialized Property normalizes back
// to itself. Database tags match the properties table.
type Property struct {
	ID        string `json:"Property_ID" db:"property_id"`
	Name      string `json:"Name" db:"name"`
	Address   string `json:"Address" db:"address"`
	City      string `json:"City" db:"city"`
	State     string `json:"State" db:"state"`
	YearBuilt int    `json:"YearBuilt" db:"year_built"`
	Units     int    `json:"Quantity" db:"quantity"`
	Levels    int    `json:"Level" db:"level"`
	Submarket string `json:"Submarket" db:"submarket"`
}

// Defaults returns a Property populated entirely with fallback values.
func Defaults() Property {
	return Property{
		ID:        DefaultID,
		Name:      DefaultName,
		Address:   DefaultAddress,
		City:      DefaultCity,
		State:     DefaultState,
		YearBuilt: DefaultYearBuilt,
		Units:     DefaultUnits,
		Levels:    DefaultLevels,
		Submarket: DefaultSubmarket,
	}
}

// HasKnownID reports whether the identifier came from the payload rather
// than the default.
func (p Property) HasKnownID() bool {
	return p.ID != "" && p.ID != DefaultID
}

// HasKnownYearBuilt reports whether a construction year was supplied.
func (p Property) HasKnownYearBuilt() bool {
	return p.YearBuilt > 0
}

// HasKnownSubmarket reports whether a submarket was supplied.
func (p Property) HasKnownSubmarket() bool {
	return p.Submarket != "" && p.Submarket != DefaultSubmarket
}
