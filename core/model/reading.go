package model

import (
	"fmt"
	"time"
)

// Reading is a point-in-time air sample for a coordinate pair. PollenPM10
// drives the wash decision; the AQI is carried for reporting only.
type Reading struct {
	PollenPM10 float64     `json:"pollen_pm10"`
	AQI        int         `json:"aqi"`
	Coords     Coordinates `json:"coords"`
	FetchedAt  time.Time   `json:"fetched_at"`
	// Simulated marks a reading whose pollen value was replaced by the
	// demo override. Only the fleet-default reading may be simulated.
	Simulated bool `json:"simulated,omitempty"`
}

// Validate rejects physically impossible samples.
func (r Reading) Validate() error {
	if r.PollenPM10 < 0 {
		return fmt.Errorf("pollen_pm10 must be non-negative")
	}
	if r.AQI < 0 {
		return fmt.Errorf("aqi must be non-negative")
	}
	return nil
}
