package metrics

import "time"

// BatchRecord describes one executed batch.
type BatchRecord struct {
	RunID    string
	Index    int
	Device   string
	Count    int
	Duration time.Duration
	Failed   bool
	Time     time.Time
}

// RunSummary describes one finished dispatch run.
type RunSummary struct {
	RunID    string
	Mode     string
	Batches  int
	Units    int
	Duration time.Duration
	Failed   bool
	Time     time.Time
}

// MetricsSink records dispatch activity.
type MetricsSink interface {
	RecordBatch(rec BatchRecord) error
	RecordRun(sum RunSummary) error
}

// LoadRecorder is implemented by sinks able to record scheduler load.
type LoadRecorder interface {
	RecordLoad(device string, load int) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordBatch(BatchRecord) error  { return nil }
func (NopSink) RecordRun(RunSummary) error     { return nil }
func (NopSink) RecordLoad(string, int) error   { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordBatch forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordBatch(rec BatchRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordBatch(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun forwards the summary to all sinks.
func (m *MultiSink) RecordRun(sum RunSummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(sum); err != nil {
			return err
		}
	}
	return nil
}

// RecordLoad forwards load samples to the sinks that support them.
func (m *MultiSink) RecordLoad(device string, load int) error {
	for _, s := range m.Sinks {
		if lr, ok := s.(LoadRecorder); ok {
			if err := lr.RecordLoad(device, load); err != nil {
				return err
			}
		}
	}
	return nil
}
