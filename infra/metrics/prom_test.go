package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/pollenops/pollenguard/core/metrics"
	"github.com/pollenops/pollenguard/core/model"
)

func TestPromSinkRecordEvaluation(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ev := coremetrics.EvaluationEvent{
		Tier:         model.TierHigh,
		GallonsSaved: 120,
		Simulated:    true,
		Time:         time.Now(),
	}
	if err := sink.RecordEvaluation(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.evaluations.WithLabelValues("HIGH", "true")); got != 1 {
		t.Fatalf("evaluations counter = %v", got)
	}
	if got := testutil.ToFloat64(sink.gallons); got != 120 {
		t.Fatalf("gallons counter = %v", got)
	}
}

func TestPromSinkRecordProviderCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	call := coremetrics.ProviderCall{
		Provider: "airquality",
		Op:       "fetch_vehicle",
		Success:  true,
		Latency:  50 * time.Millisecond,
	}
	if err := sink.RecordProviderCall(call); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.providers.WithLabelValues("airquality", "fetch_vehicle", "true")); got != 1 {
		t.Fatalf("providers counter = %v", got)
	}
}

func TestPromSinkRecordFleetSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := sink.RecordFleetSize(5); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.fleet); got != 5 {
		t.Fatalf("fleet gauge = %v", got)
	}
}

func TestPromSinkReregister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	// Registering twice on the same registry reuses the collectors.
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second: %v", err)
	}
}
