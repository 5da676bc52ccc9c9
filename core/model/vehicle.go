package model

import (
	"fmt"
	"strings"
)

// StorageType indicates where a vehicle is parked between washes.
type StorageType int

const (
	// StorageOutdoor vehicles are exposed to airborne pollen.
	StorageOutdoor StorageType = iota
	// StorageIndoor vehicles are sheltered and always washable.
	StorageIndoor
)

// String returns the canonical display form of the storage type.
func (s StorageType) String() string {
	if s == StorageIndoor {
		return "Indoor"
	}
	return "Outdoor"
}

// ParseStorage maps free-text parking descriptions to a StorageType.
// Anything mentioning an indoor bay counts as indoor; everything else,
// including the empty string, is treated as outdoor.
func ParseStorage(s string) StorageType {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "indoor") || strings.Contains(lower, "inside") {
		return StorageIndoor
	}
	return StorageOutdoor
}

// Coordinates is an optional per-vehicle geographic position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinates fall in the WGS84 range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Vehicle is a fleet inventory record. ID is a stable identifier assigned
// at insertion time and is the only handle used for removal.
type Vehicle struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Color   string       `json:"color"`
	Parked  string       `json:"parked"`
	Storage StorageType  `json:"storage"`
	Coords  *Coordinates `json:"coords,omitempty"`
}

// Label returns the identifier used in rationales and report rows.
func (v Vehicle) Label() string {
	if v.ID != "" {
		return v.ID
	}
	return v.Model
}

// Validate checks that the record is sound enough to evaluate.
func (v Vehicle) Validate() error {
	if v.ID == "" && v.Model == "" {
		return fmt.Errorf("vehicle needs an id or a model")
	}
	if v.Coords != nil && !v.Coords.Valid() {
		return fmt.Errorf("vehicle %s: coordinates out of range", v.Label())
	}
	return nil
}
