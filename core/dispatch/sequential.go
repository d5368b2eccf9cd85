package dispatch

import (
	"context"

	"github.com/kilianp07/batchflow/core/logger"
	"github.com/kilianp07/batchflow/core/metrics"
	"github.com/kilianp07/batchflow/core/runlog"
	"github.com/kilianp07/batchflow/core/scheduler"
	"github.com/kilianp07/batchflow/core/work"
)

// Runner is the behaviour shared by Dispatcher and ConcurrentDispatcher.
type Runner[T, Q any] interface {
	Run(ctx context.Context, gen work.Generator[T]) (Q, error)
	SetLogger(l logger.Logger)
	SetMetrics(s metrics.MetricsSink)
	SetBus(p Publisher)
	SetLogStore(s runlog.Store)
	History() []runlog.RunRecord
}

// Dispatcher drives a generator to exhaustion, executing one batch at a time.
type Dispatcher[T, R, Q any] struct {
	base
	worker  Worker[T, R]
	reducer Reducer[R, Q]
}

// NewDispatcher returns a sequential dispatcher. cfg.Mode is ignored.
func NewDispatcher[T, R, Q any](worker Worker[T, R], reducer Reducer[R, Q], sched scheduler.Scheduler, cfg Config) (*Dispatcher[T, R, Q], error) {
	if worker == nil || reducer == nil || sched == nil {
		return nil, ErrNilParameter
	}
	return &Dispatcher[T, R, Q]{
		base:    newBase(sched, cfg, ModeSequential),
		worker:  worker,
		reducer: reducer,
	}, nil
}

// New builds the dispatcher selected by cfg.Mode.
func New[T, R, Q any](worker Worker[T, R], reducer Reducer[R, Q], sched scheduler.Scheduler, cfg Config) (Runner[T, Q], error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Mode == ModeConcurrent {
		d, err := NewConcurrentDispatcher(worker, reducer, sched, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	d, err := NewDispatcher(worker, reducer, sched, cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Run pulls batches from gen until it is exhausted, runs the worker on each
// and reduces the results in generation order. The first worker error aborts
// the run without calling the reducer.
func (d *Dispatcher[T, R, Q]) Run(ctx context.Context, gen work.Generator[T]) (Q, error) {
	var zero Q
	if gen == nil {
		return zero, ErrNilParameter
	}
	run := d.begin()
	var results []R
	for gen.HasMore() {
		if err := ctx.Err(); err != nil {
			return zero, d.finish(ctx, run, err)
		}
		dev, size := d.request()
		if err := d.waitAvailable(ctx, dev, size, nil); err != nil {
			return zero, d.finish(ctx, run, err)
		}
		bt := claim(&d.base, gen, dev, size, len(results))
		run.track(bt.dev, bt.count)
		res, err := execute(ctx, &d.base, run, d.worker, bt)
		if err != nil {
			return zero, d.finish(ctx, run, err)
		}
		results = append(results, res)
	}
	return reduceResults(ctx, &d.base, run, d.reducer, results)
}
