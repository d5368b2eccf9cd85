package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	batchesTotal   *prometheus.CounterVec
	unitsTotal     *prometheus.CounterVec
	batchDuration  *prometheus.HistogramVec
	runsTotal      *prometheus.CounterVec
	schedulerLoad  *prometheus.GaugeVec
	admissionWaits *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.GaugeVec, *prometheus.CounterVec) {
	batches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_batches_total",
			Help: "Number of batches executed by dispatch workers",
		},
		[]string{"device", "status"},
	)
	units := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_units_total",
			Help: "Number of domain elements handed to workers",
		},
		[]string{"device"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_batch_duration_seconds",
			Help:    "Time spent in the worker per batch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"device"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_runs_total",
			Help: "Number of dispatch runs by outcome",
		},
		[]string{"mode", "status"},
	)
	load := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_load",
			Help: "Units in flight per device",
		},
		[]string{"device"},
	)
	waits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_admission_waits_total",
			Help: "Number of times dispatch waited for scheduler capacity",
		},
		[]string{"device"},
	)
	return batches, units, dur, runs, load, waits
}

func init() {
	batchesTotal, unitsTotal, batchDuration, runsTotal, schedulerLoad, admissionWaits = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(batchesTotal, unitsTotal, batchDuration, runsTotal, schedulerLoad, admissionWaits)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	batchesTotal, unitsTotal, batchDuration, runsTotal, schedulerLoad, admissionWaits = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
