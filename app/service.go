// Package app wires configuration, providers, sinks and the evaluator into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pollenops/pollenguard/config"
	"github.com/pollenops/pollenguard/core/air"
	coreexplain "github.com/pollenops/pollenguard/core/explain"
	"github.com/pollenops/pollenguard/core/fleet"
	"github.com/pollenops/pollenguard/core/geo"
	"github.com/pollenops/pollenguard/core/history"
	coremetrics "github.com/pollenops/pollenguard/core/metrics"
	"github.com/pollenops/pollenguard/core/model"
	"github.com/pollenops/pollenguard/core/strategy"
	"github.com/pollenops/pollenguard/infra/airquality"
	infraexplain "github.com/pollenops/pollenguard/infra/explain"
	"github.com/pollenops/pollenguard/infra/geocode"
	"github.com/pollenops/pollenguard/infra/logger"
	"github.com/pollenops/pollenguard/infra/metrics"
	"github.com/pollenops/pollenguard/infra/publish"
	"github.com/pollenops/pollenguard/internal/eventbus"
)

// EvaluateOptions carries per-request switches.
type EvaluateOptions struct {
	// LocationQuery overrides the configured fleet location when set.
	LocationQuery string
	// Simulate replaces the fleet-default pollen value with the demo
	// override for this evaluation.
	Simulate bool
	// Explain requests best-effort narration of the decision.
	Explain bool
}

// Service orchestrates fleet evaluations.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	resolver  geo.Resolver
	provider  air.Provider
	explainer coreexplain.Explainer
	evaluator *fleet.Evaluator
	sessions  *fleet.Store
	store     history.Store
	publisher *publish.Publisher
	bus       *eventbus.Bus[history.Record]
	sink      coremetrics.MetricsSink
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	classifier, err := strategy.New(cfg.Decision)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	resolver := geocode.NewClient(cfg.Geocode, logger.New("geocode"))
	provider := airquality.NewClient(cfg.AirQuality)

	var explainer coreexplain.Explainer = coreexplain.Nop{}
	if cfg.Explain.APIKey != "" {
		explainer = infraexplain.NewGeminiClient(cfg.Explain, logger.New("explain"))
	}

	evaluator, err := fleet.NewEvaluator(cfg.Fleet, classifier, provider, resolver, logger.New("evaluator"), sink)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}

	var store history.Store
	switch cfg.History.Backend {
	case "sqlite":
		store, err = history.NewSQLiteStore(cfg.History.Path)
	default:
		store, err = history.NewJSONLStore(cfg.History.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	var publisher *publish.Publisher
	if cfg.Publisher.Enabled {
		publisher, err = publish.NewPublisher(cfg.Publisher, logger.New("publisher"))
		if err != nil {
			return nil, fmt.Errorf("report publisher: %w", err)
		}
	}

	return &Service{
		cfg:       cfg,
		log:       logg,
		resolver:  resolver,
		provider:  provider,
		explainer: explainer,
		evaluator: evaluator,
		sessions:  fleet.NewStore(),
		store:     store,
		publisher: publisher,
		bus:       eventbus.New[history.Record](),
		sink:      sink,
	}, nil
}

// Sessions exposes the session store to transport handlers.
func (s *Service) Sessions() *fleet.Store { return s.sessions }

// History exposes the report store for querying.
func (s *Service) History() history.Store { return s.store }

// defaultPlace resolves the fleet-default location for one evaluation.
func (s *Service) defaultPlace(ctx context.Context, opts EvaluateOptions) (geo.Place, error) {
	query := opts.LocationQuery
	if query == "" {
		query = s.cfg.Location.Query
	}
	if query != "" {
		start := time.Now()
		place, err := s.resolver.Forward(ctx, query)
		s.recordProvider("geocode", "forward", err == nil, time.Since(start))
		if err != nil {
			return geo.Place{}, err
		}
		return place, nil
	}
	place := geo.Place{Coords: model.Coordinates{Lat: s.cfg.Location.Lat, Lon: s.cfg.Location.Lon}}
	if s.cfg.Location.Name != "" {
		place.DisplayName = s.cfg.Location.Name
	} else {
		place.DisplayName = s.resolver.Reverse(ctx, place.Coords.Lat, place.Coords.Lon)
	}
	return place, nil
}

// Evaluate runs one fleet evaluation for the session. A failed default
// reading fetch aborts the evaluation; per-vehicle failures degrade inside
// the evaluator. The completed report is fanned out to the history store
// and the report publisher.
func (s *Service) Evaluate(ctx context.Context, session *fleet.Session, opts EvaluateOptions) (fleet.Report, error) {
	place, err := s.defaultPlace(ctx, opts)
	if err != nil {
		return fleet.Report{}, err
	}

	start := time.Now()
	def, err := s.provider.Fetch(ctx, place.Coords.Lat, place.Coords.Lon)
	s.recordProvider("airquality", "fetch_default", err == nil, time.Since(start))
	if err != nil {
		return fleet.Report{}, fmt.Errorf("fleet-default reading: %w", err)
	}

	if opts.Simulate || s.cfg.Simulation.Enabled {
		def.PollenPM10 = s.cfg.Simulation.Pollen
		def.Simulated = true
	}

	report, err := s.evaluator.EvaluateFleet(ctx, session, def, place.DisplayName)
	if err != nil {
		return fleet.Report{}, err
	}

	if opts.Explain {
		s.narrate(ctx, def, &report)
	}

	rec := history.Record{Timestamp: report.GeneratedAt, Location: place.DisplayName, Report: report}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("history append: %v", err)
	}
	s.bus.Publish(rec)
	return report, nil
}

// narrate attaches the best-effort explanation. Failures are recorded as a
// structured reason and never surface as evaluation errors.
func (s *Service) narrate(ctx context.Context, def model.Reading, report *fleet.Report) {
	start := time.Now()
	text, err := s.explainer.Explain(ctx, def, report.Decision)
	s.recordProvider("explain", "generate", err == nil, time.Since(start))
	if err == nil {
		report.Explanation = text
		return
	}
	switch {
	case errors.Is(err, coreexplain.ErrMissingCredential):
		report.ExplanationError = "missing_credential"
	case errors.Is(err, coreexplain.ErrQuotaExceeded):
		report.ExplanationError = "quota_exceeded"
	default:
		report.ExplanationError = "unavailable"
		s.log.Warnf("explanation unavailable: %v", err)
	}
}

func (s *Service) recordProvider(provider, op string, success bool, latency time.Duration) {
	rec, ok := s.sink.(coremetrics.ProviderRecorder)
	if !ok {
		return
	}
	if err := rec.RecordProviderCall(coremetrics.ProviderCall{
		Provider: provider,
		Op:       op,
		Success:  success,
		Latency:  latency,
		Time:     time.Now(),
	}); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
}

// Run starts the API server, the Prometheus endpoint and the report fanout,
// then blocks until the context is cancelled. The handler is built by the
// caller so transports stay out of the wiring layer.
func (s *Service) Run(ctx context.Context, handler http.Handler) error {
	if s.publisher != nil {
		sub := s.bus.Subscribe()
		go func() {
			for rec := range sub {
				if err := s.publisher.Publish(rec); err != nil {
					s.log.Errorf("report publish: %v", err)
				}
			}
		}()
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.Server.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	return s.store.Close()
}
