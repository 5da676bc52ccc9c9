package config

import "fmt"

// LocationConfig defines the fleet-default location. Query, when set, is
// forward-geocoded at evaluation time and takes precedence over the fixed
// coordinates.
type LocationConfig struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Query string  `json:"query"`
	Name  string  `json:"name"`
}

// SetDefaults applies the original deployment's site (Manheim Atlanta).
func (c *LocationConfig) SetDefaults() {
	if c.Lat == 0 && c.Lon == 0 && c.Query == "" {
		c.Lat = 33.66
		c.Lon = -84.53
		c.Name = "Manheim Atlanta"
	}
}

// Validate checks the coordinate range.
func (c LocationConfig) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("lat out of range: %v", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("lon out of range: %v", c.Lon)
	}
	return nil
}

// SimulationConfig controls the demo pollen override. When enabled, the
// fleet-default reading's pollen value is replaced by Pollen before
// classification. Vehicle-specific fetched readings are never overridden.
type SimulationConfig struct {
	Enabled bool    `json:"enabled"`
	Pollen  float64 `json:"pollen"`
}

// SetDefaults applies the standard demo override value.
func (c *SimulationConfig) SetDefaults() {
	if c.Pollen == 0 {
		c.Pollen = 85
	}
}

// ServerConfig defines the API listen address.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
