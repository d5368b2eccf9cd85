package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/batchflow/core/metrics"
)

func TestPromSink_RecordBatchAndRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	now := time.Now()
	for i := 0; i < 2; i++ {
		if err := sink.RecordBatch(coremetrics.BatchRecord{RunID: "r1", Index: i, Device: "gpu:0", Count: 10, Duration: 20 * time.Millisecond, Time: now}); err != nil {
			t.Fatalf("record batch: %v", err)
		}
	}
	if err := sink.RecordBatch(coremetrics.BatchRecord{RunID: "r1", Index: 2, Device: "gpu:0", Count: 10, Failed: true, Time: now}); err != nil {
		t.Fatalf("record batch: %v", err)
	}

	expected := `
# HELP batchflow_batches_total Total number of batches recorded by the sink
# TYPE batchflow_batches_total counter
batchflow_batches_total{device="gpu:0",failed="false"} 2
batchflow_batches_total{device="gpu:0",failed="true"} 1
`
	if err := testutil.CollectAndCompare(sink.batches, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.latency); c == 0 {
		t.Errorf("latency not recorded")
	}

	if err := sink.RecordRun(coremetrics.RunSummary{RunID: "r1", Mode: "sequential", Batches: 3, Units: 30, Failed: true, Time: now}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if v := testutil.ToFloat64(sink.runs.WithLabelValues("sequential", "true")); v != 1 {
		t.Errorf("runs = %v", v)
	}
	if v := testutil.ToFloat64(sink.units); v != 30 {
		t.Errorf("units = %v", v)
	}

	if err := sink.RecordLoad("gpu:0", 42); err != nil {
		t.Fatalf("record load: %v", err)
	}
	expectedLoad := `
# HELP batchflow_device_load Units in flight per device
# TYPE batchflow_device_load gauge
batchflow_device_load{device="gpu:0"} 42
`
	if err := testutil.CollectAndCompare(sink.load, strings.NewReader(expectedLoad)); err != nil {
		t.Errorf("unexpected load metric: %v", err)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = first.RecordBatch(coremetrics.BatchRecord{Device: "cpu"})
	_ = second.RecordBatch(coremetrics.BatchRecord{Device: "cpu"})
	if v := testutil.ToFloat64(first.(*PromSink).batches.WithLabelValues("cpu", "false")); v != 2 {
		t.Errorf("shared counter = %v, want 2", v)
	}
}

func TestSinkFactoryRegistered(t *testing.T) {
	names := strings.Join(coremetrics.SinkTypes(), ",")
	for _, want := range []string{"nop", "prometheus", "influx"} {
		if !strings.Contains(names, want) {
			t.Errorf("sink %q not registered in %s", want, names)
		}
	}
}
