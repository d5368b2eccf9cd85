package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/batchflow/core/device"
	"github.com/kilianp07/batchflow/core/events"
	"github.com/kilianp07/batchflow/core/logger"
	"github.com/kilianp07/batchflow/core/metrics"
	"github.com/kilianp07/batchflow/core/runlog"
	"github.com/kilianp07/batchflow/core/scheduler"
	"github.com/kilianp07/batchflow/core/work"
)

// Worker computes the result of one batch. It is called once per work item and
// is not retried.
type Worker[T, R any] func(ctx context.Context, work T) (R, error)

// Reducer combines the per-batch results, in generation order, into the
// final value of a run. It is called once per successful run.
type Reducer[R, Q any] func(results []R) (Q, error)

// Publisher receives progress events. *eventbus.TypedBus[events.Event]
// implements it.
type Publisher interface {
	Publish(events.Event)
}

// base holds what both dispatchers share: the scheduler, the mutex that
// serializes generator and scheduler calls, and the optional observers.
type base struct {
	sched scheduler.Scheduler
	cfg   Config
	mode  string

	// mu guards every call into the generator and the scheduler.
	mu sync.Mutex

	log   logger.Logger
	sink  metrics.MetricsSink
	bus   Publisher
	store runlog.Store

	histMu  sync.Mutex
	history []runlog.RunRecord
}

func newBase(sched scheduler.Scheduler, cfg Config, mode string) base {
	cfg.SetDefaults()
	cfg.Mode = mode
	return base{sched: sched, cfg: cfg, mode: mode, log: logger.Nop{}, sink: metrics.NopSink{}}
}

// SetLogger configures the logger. A nil logger is ignored.
func (b *base) SetLogger(l logger.Logger) {
	if l != nil {
		b.log = l
	}
}

// SetMetrics configures the sink that records batches and runs.
func (b *base) SetMetrics(s metrics.MetricsSink) {
	if s == nil {
		s = metrics.NopSink{}
	}
	b.sink = s
}

// SetBus configures where progress events are published.
func (b *base) SetBus(p Publisher) { b.bus = p }

// SetLogStore configures the store used to persist run records.
func (b *base) SetLogStore(s runlog.Store) { b.store = s }

// Scheduler returns the scheduler the dispatcher consults.
func (b *base) Scheduler() scheduler.Scheduler { return b.sched }

// Config returns the effective configuration.
func (b *base) Config() Config { return b.cfg }

// History returns the records of the runs executed so far.
func (b *base) History() []runlog.RunRecord {
	b.histMu.Lock()
	defer b.histMu.Unlock()
	return append([]runlog.RunRecord(nil), b.history...)
}

func (b *base) publish(e events.Event) {
	if b.bus != nil {
		b.bus.Publish(e)
	}
}

// request asks the scheduler for the next target and batch size, capped by the
// configured budget.
func (b *base) request() (device.Device, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dev := b.sched.NextDevice()
	size := b.sched.NextBatchSize()
	if b.cfg.BatchBudget > 0 && size > b.cfg.BatchBudget {
		size = b.cfg.BatchBudget
	}
	return dev, size
}

// waitAvailable returns once the scheduler admits size units on dev. It
// re-checks on every signal from wake and at least every poll interval.
func (b *base) waitAvailable(ctx context.Context, dev device.Device, size int, wake <-chan struct{}) error {
	for {
		b.mu.Lock()
		ok := b.sched.IsAvailable(dev, size)
		b.mu.Unlock()
		if ok {
			return nil
		}
		admissionWaits.WithLabelValues(dev.String()).Inc()
		b.log.Debugf("waiting for capacity on %s (%d units)", dev, size)
		timer := time.NewTimer(b.cfg.pollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("dispatch: waiting for capacity on %s: %w", dev, ctx.Err())
		case <-wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// batch is one claimed work item.
type batch[T any] struct {
	index  int
	dev    device.Device
	offset int
	count  int
	item   T
}

// claim pulls the next chunk from gen and marks it in flight on dev.
func claim[T any](b *base, gen work.Generator[T], dev device.Device, size, index int) batch[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	offset := gen.Offset()
	count, item := gen.Generate(size)
	b.sched.Dispatched(dev, count)
	b.observeLoad(dev)
	return batch[T]{index: index, dev: dev, offset: offset, count: count, item: item}
}

// release marks a claimed chunk as no longer in flight.
func (b *base) release(dev device.Device, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sched.Completed(dev, count)
	b.observeLoad(dev)
}

// observeLoad exports the scheduler load of dev. Callers hold b.mu.
func (b *base) observeLoad(dev device.Device) {
	lr, ok := b.sched.(scheduler.LoadReporter)
	if !ok {
		return
	}
	load := lr.Load(dev)
	schedulerLoad.WithLabelValues(dev.String()).Set(float64(load))
	if rec, ok := b.sink.(metrics.LoadRecorder); ok {
		if err := rec.RecordLoad(dev.String(), load); err != nil {
			b.log.Warnf("load metrics error: %v", err)
		}
	}
}

// execute runs the worker on a claimed batch. The batch is released whatever
// the outcome, including a panicking worker.
func execute[T, R any](ctx context.Context, b *base, run *runState, worker Worker[T, R], bt batch[T]) (R, error) {
	defer b.release(bt.dev, bt.count)
	b.publish(events.BatchEvent{
		RunID: run.id, Index: bt.index, Device: bt.dev.String(), Offset: bt.offset,
		Count: bt.count, Phase: events.PhaseDispatched, Time: time.Now(),
	})
	start := time.Now()
	res, err := worker(ctx, bt.item)
	elapsed := time.Since(start)
	if err != nil {
		err = &BatchError{Index: bt.index, Device: bt.dev, Offset: bt.offset, Count: bt.count, Err: err}
	}
	b.finishBatch(run, bt.index, bt.dev, bt.offset, bt.count, elapsed, err)
	return res, err
}

func (b *base) finishBatch(run *runState, index int, dev device.Device, offset, count int, elapsed time.Duration, err error) {
	status, phase := "ok", events.PhaseCompleted
	if err != nil {
		status, phase = "failed", events.PhaseFailed
	}
	batchesTotal.WithLabelValues(dev.String(), status).Inc()
	unitsTotal.WithLabelValues(dev.String()).Add(float64(count))
	batchDuration.WithLabelValues(dev.String()).Observe(elapsed.Seconds())

	now := time.Now()
	if serr := b.sink.RecordBatch(metrics.BatchRecord{
		RunID: run.id, Index: index, Device: dev.String(), Count: count,
		Duration: elapsed, Failed: err != nil, Time: now,
	}); serr != nil {
		b.log.Warnf("batch metrics error: %v", serr)
	}
	ev := events.BatchEvent{
		RunID: run.id, Index: index, Device: dev.String(), Offset: offset,
		Count: count, Phase: phase, Duration: elapsed, Time: now,
	}
	if err != nil {
		ev.Err = err.Error()
		b.log.Errorf("%v", err)
	} else {
		b.log.Debugw("batch completed", map[string]any{
			"run_id": run.id, "index": index, "device": dev.String(),
			"offset": offset, "count": count, "duration_ms": elapsed.Milliseconds(),
		})
	}
	b.publish(ev)
}

// runState tracks one Run. Only the dispatching goroutine touches it.
type runState struct {
	id      string
	started time.Time
	batches int
	units   int
	devices map[string]struct{}
}

func (b *base) begin() *runState {
	run := &runState{id: uuid.NewString(), started: time.Now(), devices: make(map[string]struct{})}
	b.log.Infof("run %s started (%s)", run.id, b.mode)
	b.publish(events.RunEvent{RunID: run.id, Mode: b.mode, Time: run.started})
	return run
}

func (r *runState) track(dev device.Device, count int) {
	r.batches++
	r.units += count
	r.devices[dev.String()] = struct{}{}
}

// finish records the outcome of a run and returns err unchanged.
func (b *base) finish(ctx context.Context, run *runState, err error) error {
	now := time.Now()
	status := runlog.StatusOK
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = runlog.StatusCanceled
	case err != nil:
		status = runlog.StatusFailed
	}
	devices := make([]string, 0, len(run.devices))
	for d := range run.devices {
		devices = append(devices, d)
	}
	sort.Strings(devices)
	rec := runlog.RunRecord{
		ID: run.id, Mode: b.mode, Started: run.started, Finished: now,
		Batches: run.batches, Units: run.units, Devices: devices, Status: status,
	}
	if err != nil {
		rec.Error = err.Error()
	}

	runsTotal.WithLabelValues(b.mode, status).Inc()
	if serr := b.sink.RecordRun(metrics.RunSummary{
		RunID: run.id, Mode: b.mode, Batches: run.batches, Units: run.units,
		Duration: rec.Duration(), Failed: err != nil, Time: now,
	}); serr != nil {
		b.log.Warnf("run metrics error: %v", serr)
	}
	if b.store != nil {
		if serr := b.store.Append(context.WithoutCancel(ctx), rec); serr != nil {
			b.log.Errorf("run log append failed: %v", serr)
		}
	}
	b.histMu.Lock()
	b.history = append(b.history, rec)
	b.histMu.Unlock()

	b.publish(events.RunEvent{
		RunID: run.id, Mode: b.mode, Finished: true, Batches: run.batches,
		Units: run.units, Duration: rec.Duration(), Err: rec.Error, Time: now,
	})
	if err != nil {
		b.log.Errorf("run %s %s after %d batches: %v", run.id, status, run.batches, err)
	} else {
		b.log.Infof("run %s finished: %d batches, %d units in %s", run.id, run.batches, run.units, rec.Duration())
	}
	return err
}

// reduceResults calls the reducer once and records the outcome of the run.
func reduceResults[R, Q any](ctx context.Context, b *base, run *runState, reducer Reducer[R, Q], results []R) (Q, error) {
	q, err := reducer(results)
	if err != nil {
		var zero Q
		return zero, b.finish(ctx, run, fmt.Errorf("dispatch: reduce: %w", err))
	}
	return q, b.finish(ctx, run, nil)
}
