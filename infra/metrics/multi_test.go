package metrics

import (
	"testing"

	coremetrics "github.com/pollenops/pollenguard/core/metrics"
)

type recordSink struct {
	evaluations int
	providers   int
	fleet       int
}

func (r *recordSink) RecordEvaluation(coremetrics.EvaluationEvent) error {
	r.evaluations++
	return nil
}

func (r *recordSink) RecordProviderCall(coremetrics.ProviderCall) error {
	r.providers++
	return nil
}

func (r *recordSink) RecordFleetSize(int) error {
	r.fleet++
	return nil
}

// evalOnlySink implements only the base MetricsSink interface.
type evalOnlySink struct {
	evaluations int
}

func (r *evalOnlySink) RecordEvaluation(coremetrics.EvaluationEvent) error {
	r.evaluations++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordEvaluation(coremetrics.EvaluationEvent{}); err != nil {
		t.Fatalf("record evaluation: %v", err)
	}
	if err := m.RecordProviderCall(coremetrics.ProviderCall{}); err != nil {
		t.Fatalf("record provider call: %v", err)
	}
	if err := m.RecordFleetSize(3); err != nil {
		t.Fatalf("record fleet size: %v", err)
	}
	if s1.evaluations != 1 || s1.providers != 1 || s1.fleet != 1 {
		t.Fatalf("events not forwarded to s1: %+v", s1)
	}
	if s2.evaluations != 1 || s2.providers != 1 || s2.fleet != 1 {
		t.Fatalf("events not forwarded to s2: %+v", s2)
	}
}

func TestMultiSinkSkipsUnsupported(t *testing.T) {
	s := &evalOnlySink{}
	m := NewMultiSink(s)
	if err := m.RecordProviderCall(coremetrics.ProviderCall{}); err != nil {
		t.Fatalf("record provider call: %v", err)
	}
	if err := m.RecordFleetSize(1); err != nil {
		t.Fatalf("record fleet size: %v", err)
	}
	if s.evaluations != 0 {
		t.Fatalf("unexpected evaluation count: %d", s.evaluations)
	}
}
