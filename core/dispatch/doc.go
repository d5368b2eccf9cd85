// Package dispatch drives a work.Generator and a scheduler.Scheduler to
// completion: it asks the scheduler where and how much to dispatch, pulls
// that much work from the generator, hands it to a caller-supplied Worker and
// finally passes the ordered per-batch results to a Reducer.
//
// Two dispatchers are provided. Dispatcher runs one batch at a time.
// ConcurrentDispatcher keeps several batches in flight while the scheduler
// admits them. Both hand the reducer results in generation order.
//
// A worker failure aborts the run: no further batches are dispatched,
// batches already running are awaited, the reducer is not called and the
// first failure is returned as a *BatchError.
package dispatch
