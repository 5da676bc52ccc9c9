package fleet

import "fmt"

// Config defines evaluation parameters.
type Config struct {
	// GallonsPerVehicle is the water-saved estimate per held vehicle.
	GallonsPerVehicle int `json:"gallons_per_vehicle"`
	// Workers bounds the number of concurrent per-vehicle reading
	// lookups. Output order is unaffected by the pool size.
	Workers int `json:"workers"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.GallonsPerVehicle == 0 {
		c.GallonsPerVehicle = 40
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.GallonsPerVehicle < 0 {
		return fmt.Errorf("gallons_per_vehicle must be non-negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
