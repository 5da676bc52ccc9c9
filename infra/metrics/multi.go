package metrics

import coremetrics "github.com/pollenops/pollenguard/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEvaluation forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordEvaluation(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordProviderCall forwards provider calls to sinks that support them.
func (m *MultiSink) RecordProviderCall(ev coremetrics.ProviderCall) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ProviderRecorder); ok {
			if err := rec.RecordProviderCall(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSize forwards the inventory size to sinks that support it.
func (m *MultiSink) RecordFleetSize(size int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FleetSizeRecorder); ok {
			if err := rec.RecordFleetSize(size); err != nil {
				return err
			}
		}
	}
	return nil
}
