package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/batchflow/core/metrics"
)

// PromSink records dispatch activity in Prometheus metrics.
type PromSink struct {
	batches *prometheus.CounterVec
	latency *prometheus.HistogramVec
	runs    *prometheus.CounterVec
	units   prometheus.Counter
	load    *prometheus.GaugeVec
}

// NewPromSink registers the sink metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchflow_batches_total",
			Help: "Total number of batches recorded by the sink",
		}, []string{"device", "failed"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batchflow_batch_latency_seconds",
			Help:    "Worker latency per batch",
			Buckets: prometheus.DefBuckets,
		}, []string{"device"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batchflow_runs_total",
			Help: "Total number of dispatch runs",
		}, []string{"mode", "failed"}),
		units: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batchflow_run_units_total",
			Help: "Domain elements covered by finished runs",
		}),
		load: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "batchflow_device_load",
			Help: "Units in flight per device",
		}, []string{"device"}),
	}
	var err error
	if s.batches, err = register(reg, s.batches); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.units, err = register(reg, s.units); err != nil {
		return nil, err
	}
	if s.load, err = register(reg, s.load); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordBatch counts the batch and observes its latency.
func (s *PromSink) RecordBatch(rec coremetrics.BatchRecord) error {
	s.batches.WithLabelValues(rec.Device, strconv.FormatBool(rec.Failed)).Inc()
	s.latency.WithLabelValues(rec.Device).Observe(rec.Duration.Seconds())
	return nil
}

// RecordRun counts the run and the units it covered.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	s.runs.WithLabelValues(sum.Mode, strconv.FormatBool(sum.Failed)).Inc()
	s.units.Add(float64(sum.Units))
	return nil
}

// RecordLoad sets the load gauge of device.
func (s *PromSink) RecordLoad(device string, load int) error {
	s.load.WithLabelValues(device).Set(float64(load))
	return nil
}

var _ coremetrics.LoadRecorder = (*PromSink)(nil)
