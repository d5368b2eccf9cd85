package scheduler

import (
	"fmt"
	"sync"

	"github.com/kilianp07/batchflow/core/device"
)

// RoundRobinScheduler rotates over several devices, each with its own
// capacity, and admits work when load(dev) + n <= capacity(dev).
type RoundRobinScheduler struct {
	devices   []device.Device
	capacity  map[device.Device]int
	batchSize int
	loads     *loadTable

	mu   sync.Mutex
	next int
}

// NewRoundRobinScheduler builds the scheduler from cfg.Devices. Devices with a
// zero capacity inherit cfg.Capacity.
func NewRoundRobinScheduler(cfg Config) (*RoundRobinScheduler, error) {
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidConfig, cfg.BatchSize)
	}
	if len(cfg.Devices) == 0 {
		return nil, fmt.Errorf("%w: round robin needs at least one device", ErrInvalidConfig)
	}
	s := &RoundRobinScheduler{
		capacity:  make(map[device.Device]int, len(cfg.Devices)),
		batchSize: cfg.BatchSize,
		loads:     newLoadTable(),
	}
	for _, dc := range cfg.Devices {
		dev, err := device.Parse(dc.Device)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if _, dup := s.capacity[dev]; dup {
			return nil, fmt.Errorf("%w: duplicate device %s", ErrInvalidConfig, dev)
		}
		c := dc.Capacity
		if c == 0 {
			c = cfg.Capacity
		}
		if c < cfg.BatchSize {
			return nil, fmt.Errorf("%w: capacity %d of %s below batch_size %d", ErrInvalidConfig, c, dev, cfg.BatchSize)
		}
		s.devices = append(s.devices, dev)
		s.capacity[dev] = c
	}
	return s, nil
}

// NextDevice returns the devices in turn, starting with the first configured.
func (s *RoundRobinScheduler) NextDevice() device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.devices[s.next]
	s.next = (s.next + 1) % len(s.devices)
	return d
}

func (s *RoundRobinScheduler) NextBatchSize() int { return s.batchSize }

// Devices lists the managed devices in rotation order.
func (s *RoundRobinScheduler) Devices() []device.Device {
	return append([]device.Device(nil), s.devices...)
}

func (s *RoundRobinScheduler) IsAvailable(dev device.Device, n int) bool {
	c, ok := s.capacity[dev]
	if !ok {
		return false
	}
	return s.loads.fits(dev, n, c)
}

func (s *RoundRobinScheduler) Dispatched(dev device.Device, n int) { s.loads.add(dev, n) }

func (s *RoundRobinScheduler) Completed(dev device.Device, n int) { s.loads.sub(dev, n) }

func (s *RoundRobinScheduler) Load(dev device.Device) int { return s.loads.get(dev) }

var _ Scheduler = (*RoundRobinScheduler)(nil)
