package fleet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pollenops/pollenguard/core/air"
	"github.com/pollenops/pollenguard/core/geo"
	"github.com/pollenops/pollenguard/core/logger"
	"github.com/pollenops/pollenguard/core/model"
	"github.com/pollenops/pollenguard/core/strategy"
)

type fakeProvider struct {
	pollen map[string]float64
	err    error
	calls  int
}

func (p *fakeProvider) Fetch(_ context.Context, lat, lon float64) (model.Reading, error) {
	p.calls++
	if p.err != nil {
		return model.Reading{}, p.err
	}
	key := geo.FormatCoords(lat, lon)
	pollen, ok := p.pollen[key]
	if !ok {
		return model.Reading{}, &air.ProviderError{Op: "fetch", Err: fmt.Errorf("no reading for %s", key)}
	}
	return model.Reading{PollenPM10: pollen, Coords: model.Coordinates{Lat: lat, Lon: lon}}, nil
}

type fakeResolver struct{}

func (fakeResolver) Forward(context.Context, string) (geo.Place, error) {
	return geo.Place{}, geo.ErrNotFound
}

func (fakeResolver) Reverse(_ context.Context, lat, lon float64) string {
	return geo.FormatCoords(lat, lon)
}

type nopLog struct{}

func (nopLog) Debugf(string, ...any)         {}
func (nopLog) Debugw(string, map[string]any) {}
func (nopLog) Infof(string, ...any)          {}
func (nopLog) Warnf(string, ...any)          {}
func (nopLog) Errorf(string, ...any)         {}

var _ logger.Logger = nopLog{}

func newTestEvaluator(t *testing.T, p *fakeProvider) *Evaluator {
	t.Helper()
	cl, err := strategy.New(strategy.Config{})
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	eval, err := NewEvaluator(Config{}, cl, p, fakeResolver{}, nopLog{}, nil)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	return eval
}

func TestActionMatrix(t *testing.T) {
	cases := []struct {
		tier    model.Tier
		storage model.StorageType
		want    model.Action
	}{
		{model.TierLow, model.StorageOutdoor, model.ActionWash},
		{model.TierModerate, model.StorageOutdoor, model.ActionHold},
		{model.TierHigh, model.StorageOutdoor, model.ActionDoNotWash},
		{model.TierLow, model.StorageIndoor, model.ActionWash},
		{model.TierModerate, model.StorageIndoor, model.ActionWash},
		{model.TierHigh, model.StorageIndoor, model.ActionWash},
	}
	for _, c := range cases {
		if got := actionFor(c.tier, c.storage); got != c.want {
			t.Errorf("actionFor(%v, %v) = %v, want %v", c.tier, c.storage, got, c.want)
		}
	}
}

func TestEvaluateVehicleUsesDefault(t *testing.T) {
	p := &fakeProvider{}
	eval := newTestEvaluator(t, p)

	v := model.Vehicle{ID: "VH-1", Storage: model.StorageOutdoor}
	res := eval.EvaluateVehicle(context.Background(), v, model.Reading{PollenPM10: 85}, "Manheim Atlanta")
	if p.calls != 0 {
		t.Fatalf("vehicle without coords must not trigger a fetch, got %d calls", p.calls)
	}
	if res.Action != model.ActionDoNotWash {
		t.Fatalf("expected DO NOT WASH at pollen 85, got %v", res.Action)
	}
	if res.Location != "Manheim Atlanta" {
		t.Fatalf("expected default location, got %q", res.Location)
	}
}

func TestEvaluateVehicleFetchesOwnReading(t *testing.T) {
	p := &fakeProvider{pollen: map[string]float64{geo.FormatCoords(33.66, -84.53): 10}}
	eval := newTestEvaluator(t, p)

	v := model.Vehicle{ID: "VH-1", Coords: &model.Coordinates{Lat: 33.66, Lon: -84.53}}
	res := eval.EvaluateVehicle(context.Background(), v, model.Reading{PollenPM10: 85}, "Manheim Atlanta")
	if p.calls != 1 {
		t.Fatalf("expected one fetch, got %d", p.calls)
	}
	if res.Action != model.ActionWash {
		t.Fatalf("own reading of 10 should wash, got %v", res.Action)
	}
	if res.Fallback {
		t.Fatal("successful fetch must not be marked fallback")
	}
}

func TestEvaluateVehicleFallback(t *testing.T) {
	p := &fakeProvider{err: &air.ProviderError{Op: "fetch", Err: errors.New("down")}}
	eval := newTestEvaluator(t, p)

	v := model.Vehicle{ID: "VH-1", Coords: &model.Coordinates{Lat: 33.66, Lon: -84.53}}
	res := eval.EvaluateVehicle(context.Background(), v, model.Reading{PollenPM10: 10}, "Manheim Atlanta")
	if !res.Fallback {
		t.Fatal("failed fetch must mark fallback")
	}
	if res.Reading.PollenPM10 != 10 {
		t.Fatalf("fallback must reuse the default reading, got %v", res.Reading.PollenPM10)
	}
	if res.Action != model.ActionWash {
		t.Fatalf("default reading of 10 should wash, got %v", res.Action)
	}
}

func TestEvaluateFleetEmpty(t *testing.T) {
	eval := newTestEvaluator(t, &fakeProvider{})
	if _, err := eval.EvaluateFleet(context.Background(), NewSession(), model.Reading{}, ""); !errors.Is(err, ErrNoInventory) {
		t.Fatalf("expected ErrNoInventory, got %v", err)
	}
}

func TestEvaluateFleetPreservesOrder(t *testing.T) {
	eval := newTestEvaluator(t, &fakeProvider{})
	s := NewSession()
	ids := []string{"VH-1", "VH-2", "VH-3", "VH-4", "VH-5", "VH-6", "VH-7", "VH-8"}
	for _, id := range ids {
		if _, err := s.Add(model.Vehicle{ID: id}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	report, err := eval.EvaluateFleet(context.Background(), s, model.Reading{PollenPM10: 10}, "")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i, row := range report.Vehicles {
		if row.Vehicle.ID != ids[i] {
			t.Fatalf("row %d: expected %s, got %s", i, ids[i], row.Vehicle.ID)
		}
	}
}

func TestEvaluateFleetSimulatedDefaultOnly(t *testing.T) {
	// The fetched reading stays clean while the simulated default is high:
	// only the vehicle without coordinates is held.
	p := &fakeProvider{pollen: map[string]float64{geo.FormatCoords(33.66, -84.53): 10}}
	eval := newTestEvaluator(t, p)
	s := NewSession()
	if _, err := s.Add(model.Vehicle{ID: "VH-1", Coords: &model.Coordinates{Lat: 33.66, Lon: -84.53}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(model.Vehicle{ID: "VH-2"}); err != nil {
		t.Fatal(err)
	}

	def := model.Reading{PollenPM10: 85, Simulated: true}
	report, err := eval.EvaluateFleet(context.Background(), s, def, "Manheim Atlanta")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.Vehicles[0].Action != model.ActionWash {
		t.Fatalf("fetched reading must ignore the simulated default, got %v", report.Vehicles[0].Action)
	}
	if report.Vehicles[1].Action != model.ActionDoNotWash {
		t.Fatalf("defaulted vehicle must see the simulated value, got %v", report.Vehicles[1].Action)
	}
	if report.Decision.Label != "MIXED FLEET" {
		t.Fatalf("expected MIXED FLEET, got %q", report.Decision.Label)
	}
}

func TestEvaluateFleetScenarioPollen85(t *testing.T) {
	eval := newTestEvaluator(t, &fakeProvider{})
	s := NewSession()
	for _, v := range []model.Vehicle{
		{ID: "VH-1", Parked: "Outdoor - Row A"},
		{ID: "VH-2", Parked: "Indoor - Hall B"},
		{ID: "VH-3", Parked: "Outdoor - Row C"},
	} {
		if _, err := s.Add(v); err != nil {
			t.Fatal(err)
		}
	}
	report, err := eval.EvaluateFleet(context.Background(), s, model.Reading{PollenPM10: 85}, "")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.WashCount != 1 || report.HoldCount != 2 {
		t.Fatalf("expected 1 washed / 2 held, got %d / %d", report.WashCount, report.HoldCount)
	}
	if report.WaterSavedGallons != 80 {
		t.Fatalf("expected 80 gallons saved, got %d", report.WaterSavedGallons)
	}
}
