// Package geo defines the location resolution contract used by the
// evaluator. Implementations live under infra/geocode.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/pollenops/pollenguard/core/model"
)

// ErrNotFound is returned by Forward when the query matches no place.
// Callers must treat it as terminal for the current evaluation.
var ErrNotFound = errors.New("location not found")

// Place is a resolved location.
type Place struct {
	Coords      model.Coordinates `json:"coords"`
	DisplayName string            `json:"display_name"`
	Country     string            `json:"country,omitempty"`
}

// Resolver converts between free-text place queries and coordinates.
type Resolver interface {
	// Forward geocodes a free-text query. Returns ErrNotFound when the
	// provider has no match, or a wrapped provider error on failure.
	Forward(ctx context.Context, query string) (Place, error)
	// Reverse names a coordinate pair. It never fails: on provider
	// errors it returns a formatted "lat, lon" string.
	Reverse(ctx context.Context, lat, lon float64) string
}

// FormatCoords is the degraded display name used when reverse geocoding is
// unavailable.
func FormatCoords(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}
