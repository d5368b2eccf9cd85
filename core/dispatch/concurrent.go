package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/batchflow/core/scheduler"
	"github.com/kilianp07/batchflow/core/work"
)

// ConcurrentDispatcher keeps dispatching while earlier batches are still
// running, as long as the scheduler admits them. Results are reduced in
// generation order regardless of completion order.
//
// On the first worker failure no further batch is started, the batches
// already running are awaited and the first error is returned.
type ConcurrentDispatcher[T, R, Q any] struct {
	base
	worker  Worker[T, R]
	reducer Reducer[R, Q]
}

// NewConcurrentDispatcher returns a concurrent dispatcher. cfg.Mode is ignored.
func NewConcurrentDispatcher[T, R, Q any](worker Worker[T, R], reducer Reducer[R, Q], sched scheduler.Scheduler, cfg Config) (*ConcurrentDispatcher[T, R, Q], error) {
	if worker == nil || reducer == nil || sched == nil {
		return nil, ErrNilParameter
	}
	return &ConcurrentDispatcher[T, R, Q]{
		base:    newBase(sched, cfg, ModeConcurrent),
		worker:  worker,
		reducer: reducer,
	}, nil
}

// Run behaves like Dispatcher.Run but overlaps worker calls.
func (d *ConcurrentDispatcher[T, R, Q]) Run(ctx context.Context, gen work.Generator[T]) (Q, error) {
	var zero Q
	if gen == nil {
		return zero, ErrNilParameter
	}
	run := d.begin()

	g, gctx := errgroup.WithContext(ctx)
	if d.cfg.MaxInFlight > 0 {
		g.SetLimit(d.cfg.MaxInFlight)
	}
	// wake is signalled whenever a batch completes so a blocked admission
	// check is retried immediately.
	wake := make(chan struct{}, 1)
	var (
		resMu   sync.Mutex
		results = make(map[int]R)
	)

	var loopErr error
	index := 0
	for gen.HasMore() {
		if err := gctx.Err(); err != nil {
			loopErr = err
			break
		}
		dev, size := d.request()
		if err := d.waitAvailable(gctx, dev, size, wake); err != nil {
			loopErr = err
			break
		}
		bt := claim(&d.base, gen, dev, size, index)
		run.track(bt.dev, bt.count)
		index++
		g.Go(func() error {
			defer func() {
				select {
				case wake <- struct{}{}:
				default:
				}
			}()
			// Running batches see the caller's context, not the group's, so
			// a sibling failure lets them finish.
			res, err := execute(ctx, &d.base, run, d.worker, bt)
			if err != nil {
				return err
			}
			resMu.Lock()
			results[bt.index] = res
			resMu.Unlock()
			return nil
		})
	}

	if werr := g.Wait(); werr != nil {
		return zero, d.finish(ctx, run, werr)
	}
	if loopErr != nil {
		return zero, d.finish(ctx, run, loopErr)
	}

	ordered := make([]R, index)
	for i := range ordered {
		ordered[i] = results[i]
	}
	return reduceResults(ctx, &d.base, run, d.reducer, ordered)
}
