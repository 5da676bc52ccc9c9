package scenarios

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pollenops/pollenguard/core/air"
	"github.com/pollenops/pollenguard/core/fleet"
	"github.com/pollenops/pollenguard/core/geo"
	coremetrics "github.com/pollenops/pollenguard/core/metrics"
	"github.com/pollenops/pollenguard/core/model"
	"github.com/pollenops/pollenguard/core/strategy"
	"github.com/pollenops/pollenguard/infra/logger"
	"github.com/pollenops/pollenguard/infra/metrics"
)

// stubProvider serves canned readings keyed by formatted coordinates.
type stubProvider struct {
	readings map[string]float64
	fail     map[string]bool
}

func (p *stubProvider) Fetch(_ context.Context, lat, lon float64) (model.Reading, error) {
	key := geo.FormatCoords(lat, lon)
	if p.fail[key] {
		return model.Reading{}, &air.ProviderError{Op: "fetch", Err: fmt.Errorf("scenario outage at %s", key)}
	}
	pollen, ok := p.readings[key]
	if !ok {
		return model.Reading{}, &air.ProviderError{Op: "fetch", Err: fmt.Errorf("no canned reading for %s", key)}
	}
	return model.Reading{PollenPM10: pollen, Coords: model.Coordinates{Lat: lat, Lon: lon}}, nil
}

// stubResolver names coordinates without touching the network.
type stubResolver struct{}

func (stubResolver) Forward(context.Context, string) (geo.Place, error) {
	return geo.Place{}, geo.ErrNotFound
}

func (stubResolver) Reverse(_ context.Context, lat, lon float64) string {
	return geo.FormatCoords(lat, lon)
}

func buildProvider(sc *Scenario) *stubProvider {
	p := &stubProvider{readings: map[string]float64{}, fail: map[string]bool{}}
	for _, v := range sc.Vehicles {
		if v.Lat == nil || v.Lon == nil {
			continue
		}
		key := geo.FormatCoords(*v.Lat, *v.Lon)
		if v.Fail {
			p.fail[key] = true
			continue
		}
		pollen := sc.DefaultPollen
		if v.Pollen != nil {
			pollen = *v.Pollen
		}
		p.readings[key] = pollen
	}
	return p
}

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	cl, err := strategy.New(strategy.Config{})
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	eval, err := fleet.NewEvaluator(fleet.Config{}, cl, buildProvider(sc), stubResolver{}, logger.NopLogger{}, sink)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}

	session := fleet.NewSession()
	vehicles := make([]model.Vehicle, len(sc.Vehicles))
	for i, v := range sc.Vehicles {
		vehicles[i] = v.ToModel()
	}
	if err := session.AddAll(vehicles); err != nil {
		t.Fatalf("inventory: %v", err)
	}

	def := model.Reading{PollenPM10: sc.DefaultPollen}
	if sc.SimulatePollen != nil {
		def.PollenPM10 = *sc.SimulatePollen
		def.Simulated = true
	}

	report, err := eval.EvaluateFleet(context.Background(), session, def, "Scenario Site")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if report.Decision.Label != sc.Expected.Label {
		t.Errorf("scenario %s expected label %q, got %q", sc.Name, sc.Expected.Label, report.Decision.Label)
	}
	if report.WashCount != sc.Expected.Washed {
		t.Errorf("scenario %s expected %d washed, got %d", sc.Name, sc.Expected.Washed, report.WashCount)
	}
	if report.HoldCount != sc.Expected.Held {
		t.Errorf("scenario %s expected %d held, got %d", sc.Name, sc.Expected.Held, report.HoldCount)
	}
	if report.WaterSavedGallons != sc.Expected.GallonsSaved {
		t.Errorf("scenario %s expected %d gallons saved, got %d", sc.Name, sc.Expected.GallonsSaved, report.WaterSavedGallons)
	}
}
