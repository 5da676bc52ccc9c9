// Package strategy holds the wash-decision thresholds and the classifier
// mapping a pollen reading to a severity tier.
package strategy

import (
	"fmt"
	"math"

	"github.com/pollenops/pollenguard/core/model"
)

// Default thresholds for PM10-as-pollen, in µg/m³.
const (
	DefaultPollenLow  = 20
	DefaultPollenHigh = 40
)

// Config defines the classifier thresholds.
type Config struct {
	// PollenLow is the inclusive upper bound of the LOW tier.
	PollenLow float64 `json:"pollen_low"`
	// PollenHigh is the inclusive lower bound of the HIGH tier.
	PollenHigh float64 `json:"pollen_high"`
}

// SetDefaults applies the standard thresholds where unset.
func (c *Config) SetDefaults() {
	if c.PollenLow == 0 {
		c.PollenLow = DefaultPollenLow
	}
	if c.PollenHigh == 0 {
		c.PollenHigh = DefaultPollenHigh
	}
}

// Validate checks the thresholds form a non-empty moderate band.
func (c Config) Validate() error {
	if c.PollenLow >= c.PollenHigh {
		return fmt.Errorf("pollen_low (%v) must be below pollen_high (%v)", c.PollenLow, c.PollenHigh)
	}
	return nil
}

// Classifier derives a Decision from a pollen value. The zero value is not
// usable; construct with New.
type Classifier struct {
	cfg Config
}

// New returns a Classifier for the given thresholds.
func New(cfg Config) (*Classifier, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{cfg: cfg}, nil
}

// Classify maps a pollen reading to a tier, label and rationale. Boundaries
// are inclusive on both ends: values at PollenLow classify LOW and values at
// PollenHigh classify HIGH, leaving the open interval between them MODERATE.
// NaN classifies HIGH so a corrupt reading can never trigger a fleet-wide
// wash.
func (c *Classifier) Classify(pollen float64) model.Decision {
	switch {
	case math.IsNaN(pollen) || pollen >= c.cfg.PollenHigh:
		return model.Decision{
			Tier:      model.TierHigh,
			Label:     "HOLD WASH",
			Rationale: "Pollen levels are high; washing now would be wasteful.",
		}
	case pollen <= c.cfg.PollenLow:
		return model.Decision{
			Tier:      model.TierLow,
			Label:     "WASH ALL",
			Rationale: "Low pollen levels make today ideal for washing.",
		}
	default:
		return model.Decision{
			Tier:      model.TierModerate,
			Label:     "LIMITED WASH",
			Rationale: "Moderate pollen levels; wash only priority vehicles.",
		}
	}
}

// Thresholds returns the configured bounds, for reporting.
func (c *Classifier) Thresholds() (low, high float64) {
	return c.cfg.PollenLow, c.cfg.PollenHigh
}
