package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/batchflow/api/runs"
	"github.com/kilianp07/batchflow/config"
	"github.com/kilianp07/batchflow/core/dispatch"
	"github.com/kilianp07/batchflow/core/events"
	coremetrics "github.com/kilianp07/batchflow/core/metrics"
	"github.com/kilianp07/batchflow/core/runlog"
	"github.com/kilianp07/batchflow/core/scheduler"
	"github.com/kilianp07/batchflow/infra/logger"
	"github.com/kilianp07/batchflow/infra/metrics"
	"github.com/kilianp07/batchflow/infra/mqtt"
	"github.com/kilianp07/batchflow/internal/eventbus"
)

// Service owns the scheduler and the observers shared by every run: metrics
// sinks, run log store, event bus and MQTT progress publisher.
type Service struct {
	Scheduler scheduler.Scheduler
	Sink      coremetrics.MetricsSink
	Store     runlog.Store
	Bus       *eventbus.TypedBus[events.Event]

	cfg       *config.Config
	publisher *mqtt.PahoClient
	pubDone   chan struct{}
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logg := logger.New("service")
	sched, err := scheduler.New(cfg.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := runlog.New(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	svc := &Service{
		Scheduler: sched,
		Sink:      sink,
		Store:     store,
		Bus:       eventbus.NewTyped[events.Event](),
		cfg:       cfg,
		log:       logg,
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Start launches the background parts of the service: the Prometheus
// endpoint, the run log API and the MQTT progress publisher. They stop with
// ctx or Close.
func (s *Service) Start(ctx context.Context) {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if addr := s.cfg.API.Addr; addr != "" && s.Store != nil {
		go func() {
			if err := runs.Serve(ctx, addr, s.Store, s.cfg.API.Token); err != nil {
				s.log.Errorf("runs api: %v", err)
			}
		}()
	}
	if s.publisher != nil && s.pubDone == nil {
		sub := s.Bus.Subscribe()
		s.pubDone = make(chan struct{})
		go func() {
			defer close(s.pubDone)
			s.publisher.Run(ctx, sub)
		}()
	}
}

// Attach wires the service observers into a dispatcher.
func Attach[T, Q any](s *Service, r dispatch.Runner[T, Q]) {
	r.SetLogger(logger.New("dispatch"))
	r.SetMetrics(s.Sink)
	r.SetBus(s.Bus)
	if s.Store != nil {
		r.SetLogStore(s.Store)
	}
}

// Close flushes pending progress events and releases the resources held by
// the service.
func (s *Service) Close() error {
	var errs []error
	if s.Bus != nil {
		s.Bus.Close()
	}
	if s.pubDone != nil {
		<-s.pubDone
	}
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("run log close: %w", err))
		}
	}
	if c, ok := s.Sink.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
