package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kilianp07/batchflow/core/device"
)

// Scheduler chooses the target device and batch size for the next dispatch and
// tracks the load in flight on each device.
type Scheduler interface {
	NextDevice() device.Device
	NextBatchSize() int
	// IsAvailable reports whether n more units may be dispatched to dev now.
	IsAvailable(dev device.Device, n int) bool
	// Dispatched records n units handed to a worker on dev.
	Dispatched(dev device.Device, n int)
	// Completed records n units returned by a worker on dev.
	Completed(dev device.Device, n int)
}

// LoadReporter is implemented by schedulers able to report their current load.
type LoadReporter interface {
	Load(dev device.Device) int
}

var (
	// ErrInvalidConfig is returned when a scheduler cannot be built from its
	// configuration.
	ErrInvalidConfig = errors.New("scheduler: invalid config")
	// ErrUnbalanced marks a Completed call that exceeds the load in flight.
	ErrUnbalanced = errors.New("scheduler: completed more units than dispatched")
	// ErrNonPositive marks a Dispatched or Completed call with n <= 0.
	ErrNonPositive = errors.New("scheduler: unit count must be positive")
)

// ProtocolError is the panic value raised when dispatched/completed calls are
// not paired. It indicates a bug in the dispatcher.
type ProtocolError struct {
	Op     string
	Device device.Device
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s on %s: %v", e.Op, e.Device, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// loadTable is a mutex-guarded per-device counter of units in flight.
type loadTable struct {
	mu   sync.Mutex
	load map[device.Device]int
}

func newLoadTable() *loadTable {
	return &loadTable{load: make(map[device.Device]int)}
}

func (t *loadTable) get(dev device.Device) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load[dev]
}

// fits reports whether load(dev)+n stays within capacity.
func (t *loadTable) fits(dev device.Device, n, capacity int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load[dev]+n <= capacity
}

func (t *loadTable) add(dev device.Device, n int) {
	if n <= 0 {
		panic(&ProtocolError{Op: "dispatched", Device: dev, Err: fmt.Errorf("%w: %d", ErrNonPositive, n)})
	}
	t.mu.Lock()
	t.load[dev] += n
	t.mu.Unlock()
}

func (t *loadTable) sub(dev device.Device, n int) {
	if n <= 0 {
		panic(&ProtocolError{Op: "completed", Device: dev, Err: fmt.Errorf("%w: %d", ErrNonPositive, n)})
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.load[dev]
	if n > cur {
		panic(&ProtocolError{Op: "completed", Device: dev, Err: fmt.Errorf("%w: %d > %d", ErrUnbalanced, n, cur)})
	}
	if cur == n {
		delete(t.load, dev)
		return
	}
	t.load[dev] = cur - n
}
