// Package fleet implements the per-vehicle wash evaluation and the
// fleet-level aggregation of the results.
package fleet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pollenops/pollenguard/core/air"
	"github.com/pollenops/pollenguard/core/geo"
	"github.com/pollenops/pollenguard/core/logger"
	"github.com/pollenops/pollenguard/core/metrics"
	"github.com/pollenops/pollenguard/core/model"
	"github.com/pollenops/pollenguard/core/strategy"
)

// ErrNoInventory is returned when an evaluation is requested against an
// empty session. An empty fleet has no decision.
var ErrNoInventory = errors.New("no vehicles in inventory")

// Evaluator computes per-vehicle wash actions and the fleet report.
type Evaluator struct {
	classifier *strategy.Classifier
	provider   air.Provider
	resolver   geo.Resolver
	log        logger.Logger
	sink       metrics.MetricsSink
	cfg        Config
}

// NewEvaluator wires an Evaluator. A nil sink disables metrics.
func NewEvaluator(cfg Config, cl *strategy.Classifier, provider air.Provider, resolver geo.Resolver, log logger.Logger, sink metrics.MetricsSink) (*Evaluator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Evaluator{
		classifier: cl,
		provider:   provider,
		resolver:   resolver,
		log:        log,
		sink:       sink,
		cfg:        cfg,
	}, nil
}

// actionFor applies the decision matrix: indoor vehicles always wash; an
// outdoor vehicle is blocked under HIGH and deferred under MODERATE.
func actionFor(tier model.Tier, storage model.StorageType) model.Action {
	if storage == model.StorageIndoor {
		return model.ActionWash
	}
	switch tier {
	case model.TierHigh:
		return model.ActionDoNotWash
	case model.TierModerate:
		return model.ActionHold
	default:
		return model.ActionWash
	}
}

// EvaluateVehicle determines one vehicle's action against the fleet-default
// reading. Vehicles with their own coordinates get a fresh provider fetch;
// a failed fetch falls back to the default reading. The simulated override,
// when present, lives only in the default reading and is never applied to a
// fetched one.
func (e *Evaluator) EvaluateVehicle(ctx context.Context, v model.Vehicle, def model.Reading, defLocation string) VehicleResult {
	reading := def
	location := defLocation
	fallback := false

	if v.Coords != nil {
		start := time.Now()
		fetched, err := e.provider.Fetch(ctx, v.Coords.Lat, v.Coords.Lon)
		_ = e.recordProvider("airquality", "fetch_vehicle", err == nil, err != nil, time.Since(start))
		if err != nil {
			e.log.Warnf("vehicle %s: reading fetch failed, using fleet default: %v", v.Label(), err)
			fallback = true
		} else {
			reading = fetched
		}
		location = e.resolver.Reverse(ctx, v.Coords.Lat, v.Coords.Lon)
	}

	dec := e.classifier.Classify(reading.PollenPM10)
	act := actionFor(dec.Tier, v.Storage)
	return VehicleResult{
		Vehicle:     v,
		Action:      act,
		ActionLabel: act.String(),
		Location:    location,
		Reading:     reading,
		Fallback:    fallback,
	}
}

// EvaluateFleet evaluates every vehicle in the session against the default
// reading and aggregates the results. Per-vehicle lookups run on a bounded
// worker pool; the returned rows keep the inventory's insertion order
// regardless of completion order.
func (e *Evaluator) EvaluateFleet(ctx context.Context, s *Session, def model.Reading, defLocation string) (Report, error) {
	vehicles := s.Vehicles()
	if len(vehicles) == 0 {
		return Report{}, ErrNoInventory
	}
	start := time.Now()
	_ = e.sinkFleetSize(len(vehicles))

	results := make([]VehicleResult, len(vehicles))
	sem := make(chan struct{}, e.cfg.Workers)
	var wg sync.WaitGroup
	for i, v := range vehicles {
		wg.Add(1)
		go func(i int, v model.Vehicle) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.EvaluateVehicle(ctx, v, def, defLocation)
		}(i, v)
	}
	wg.Wait()

	report := e.aggregate(results)
	report.Default = def
	report.Location = defLocation
	report.GeneratedAt = time.Now().UTC()

	if err := e.sink.RecordEvaluation(metrics.EvaluationEvent{
		Location:     defLocation,
		Tier:         report.Decision.Tier,
		Pollen:       def.PollenPM10,
		AQI:          def.AQI,
		Vehicles:     len(vehicles),
		Washed:       report.WashCount,
		Held:         report.HoldCount,
		GallonsSaved: report.WaterSavedGallons,
		Simulated:    def.Simulated,
		Duration:     time.Since(start),
		Time:         time.Now(),
	}); err != nil {
		e.log.Warnf("metrics sink: %v", err)
	}
	return report, nil
}

func (e *Evaluator) recordProvider(provider, op string, success, fallback bool, latency time.Duration) error {
	rec, ok := e.sink.(metrics.ProviderRecorder)
	if !ok {
		return nil
	}
	return rec.RecordProviderCall(metrics.ProviderCall{
		Provider: provider,
		Op:       op,
		Success:  success,
		Fallback: fallback,
		Latency:  latency,
		Time:     time.Now(),
	})
}

func (e *Evaluator) sinkFleetSize(n int) error {
	rec, ok := e.sink.(metrics.FleetSizeRecorder)
	if !ok {
		return nil
	}
	return rec.RecordFleetSize(n)
}
