package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pollenops/pollenguard/core/model"
)

type VehicleDef struct {
	ID     string   `yaml:"id"`
	Model  string   `yaml:"model"`
	Color  string   `yaml:"color"`
	Parked string   `yaml:"parked"`
	Lat    *float64 `yaml:"lat,omitempty"`
	Lon    *float64 `yaml:"lon,omitempty"`
	// Pollen is the reading the stub provider serves for this vehicle's
	// coordinates. Vehicles without coordinates use the scenario default.
	Pollen *float64 `yaml:"pollen,omitempty"`
	// Fail makes the stub provider error for this vehicle, forcing the
	// fleet-default fallback.
	Fail bool `yaml:"fail,omitempty"`
}

func (v VehicleDef) ToModel() model.Vehicle {
	out := model.Vehicle{
		ID:     v.ID,
		Model:  v.Model,
		Color:  v.Color,
		Parked: v.Parked,
	}
	if v.Lat != nil && v.Lon != nil {
		out.Coords = &model.Coordinates{Lat: *v.Lat, Lon: *v.Lon}
	}
	return out
}

type Expected struct {
	Label        string `yaml:"label"`
	Washed       int    `yaml:"washed"`
	Held         int    `yaml:"held"`
	GallonsSaved int    `yaml:"gallons_saved"`
}

type Scenario struct {
	Name           string       `yaml:"name"`
	Description    string       `yaml:"description,omitempty"`
	DefaultPollen  float64      `yaml:"default_pollen"`
	SimulatePollen *float64     `yaml:"simulate_pollen,omitempty"`
	Vehicles       []VehicleDef `yaml:"vehicles"`
	Expected       Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
