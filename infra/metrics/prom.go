package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/pollenops/pollenguard/core/metrics"
)

// PromSink records evaluation and provider events in Prometheus metrics.
type PromSink struct {
	evaluations *prometheus.CounterVec
	gallons     prometheus.Counter
	providers   *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	fleet       prometheus.Gauge
}

// NewPromSink registers wash metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered are reused.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wash_evaluations_total",
		Help: "Total number of fleet wash evaluations",
	}, []string{"tier", "simulated"})
	gallons := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wash_water_saved_gallons_total",
		Help: "Cumulative estimated water saved by held washes",
	})
	providers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_calls_total",
		Help: "Total number of outbound provider calls",
	}, []string{"provider", "op", "success"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_latency_seconds",
		Help:    "Latency of outbound provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "op", "success"})
	fleet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_inventory_vehicles",
		Help: "Number of vehicles in the inventory at evaluation time",
	})

	if err := reg.Register(evaluations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			evaluations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(gallons); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			gallons = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(providers); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			providers = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fleet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fleet = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		evaluations: evaluations,
		gallons:     gallons,
		providers:   providers,
		latency:     latency,
		fleet:       fleet,
	}, nil
}

// RecordEvaluation increments the evaluation counter and the water-saved
// total.
func (s *PromSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	s.evaluations.WithLabelValues(ev.Tier.String(), strconv.FormatBool(ev.Simulated)).Inc()
	s.gallons.Add(float64(ev.GallonsSaved))
	return nil
}

// RecordProviderCall counts the call and observes its latency.
func (s *PromSink) RecordProviderCall(ev coremetrics.ProviderCall) error {
	ok := strconv.FormatBool(ev.Success)
	s.providers.WithLabelValues(ev.Provider, ev.Op, ok).Inc()
	s.latency.WithLabelValues(ev.Provider, ev.Op, ok).Observe(ev.Latency.Seconds())
	return nil
}

// RecordFleetSize sets the inventory gauge.
func (s *PromSink) RecordFleetSize(size int) error {
	s.fleet.Set(float64(size))
	return nil
}
