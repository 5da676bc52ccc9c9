// Package metrics defines the observability sink contracts for fleet
// evaluations and provider calls. Sink implementations live under
// infra/metrics.
package metrics

import (
	"time"

	"github.com/pollenops/pollenguard/core/model"
)

// EvaluationEvent captures one completed fleet evaluation.
type EvaluationEvent struct {
	Location     string
	Tier         model.Tier
	Pollen       float64
	AQI          int
	Vehicles     int
	Washed       int
	Held         int
	GallonsSaved int
	Simulated    bool
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records fleet evaluations for observability purposes.
type MetricsSink interface {
	RecordEvaluation(ev EvaluationEvent) error
}

// ProviderCall captures one outbound call to a geodata or explanation
// provider.
type ProviderCall struct {
	Provider string
	Op       string
	Success  bool
	Fallback bool
	Latency  time.Duration
	Time     time.Time
}

// ProviderRecorder is implemented by sinks able to record provider calls.
type ProviderRecorder interface {
	RecordProviderCall(ev ProviderCall) error
}

// FleetSizeRecorder records the inventory size seen at evaluation time.
type FleetSizeRecorder interface {
	RecordFleetSize(size int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordEvaluation(EvaluationEvent) error { return nil }
func (NopSink) RecordProviderCall(ProviderCall) error  { return nil }
func (NopSink) RecordFleetSize(int) error              { return nil }
