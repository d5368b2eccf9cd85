package dispatch

import (
	"errors"
	"fmt"

	"github.com/kilianp07/batchflow/core/device"
)

// ErrNilParameter is returned when a dispatcher is built without a worker,
// reducer or scheduler.
var ErrNilParameter = errors.New("dispatch: nil parameter")

// BatchError wraps the failure of the worker for one batch.
type BatchError struct {
	Index  int
	Device device.Device
	Offset int
	Count  int
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("dispatch: batch %d (%d units at offset %d) on %s: %v", e.Index, e.Count, e.Offset, e.Device, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
