package fleet

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pollenops/pollenguard/core/model"
)

// VehicleResult is one row of the fleet action table.
type VehicleResult struct {
	Vehicle model.Vehicle `json:"vehicle"`
	Action  model.Action  `json:"-"`
	// ActionLabel is the serialized form of Action.
	ActionLabel string `json:"action"`
	// Location is the resolved display name for the reading that drove
	// this row, degraded to "lat, lon" when reverse geocoding failed.
	Location string        `json:"location"`
	Reading  model.Reading `json:"reading"`
	// Fallback marks rows where a per-vehicle fetch failed and the
	// fleet-default reading was reused.
	Fallback bool `json:"fallback,omitempty"`
}

// PollenSummary describes the spread of effective pollen values across the
// fleet.
type PollenSummary struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Report is the complete outcome of one fleet evaluation.
type Report struct {
	Decision model.Decision `json:"decision"`
	// Default is the fleet-default reading applied to vehicles without
	// their own coordinates.
	Default  model.Reading `json:"default_reading"`
	Location string        `json:"location"`
	Vehicles  []VehicleResult `json:"vehicles"`
	WashCount int             `json:"wash_count"`
	HoldCount int             `json:"hold_count"`
	// WaterSavedGallons is holdCount times the configured per-vehicle
	// constant. An estimate, not authoritative.
	WaterSavedGallons int           `json:"water_saved_gallons"`
	Pollen            PollenSummary `json:"pollen_summary"`
	// Explanation is best-effort narration; ExplanationError carries the
	// structured unavailability reason when it could not be produced.
	Explanation      string    `json:"explanation,omitempty"`
	ExplanationError string    `json:"explanation_error,omitempty"`
	GeneratedAt      time.Time `json:"generated_at"`
}

func summarize(results []VehicleResult) PollenSummary {
	if len(results) == 0 {
		return PollenSummary{}
	}
	vals := make([]float64, len(results))
	for i, r := range results {
		vals[i] = r.Reading.PollenPM10
	}
	s := PollenSummary{Mean: stat.Mean(vals, nil), Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}
