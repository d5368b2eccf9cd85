package scheduler

import (
	"fmt"

	"github.com/kilianp07/batchflow/core/device"
)

// Config holds the scalar parameters shared by the built-in policies.
type Config struct {
	Device    string         `json:"device" yaml:"device"`
	BatchSize int            `json:"batch_size" yaml:"batch_size"`
	Capacity  int            `json:"capacity" yaml:"capacity"`
	Devices   []DeviceConfig `json:"devices" yaml:"devices"`
}

// DeviceConfig gives the capacity of one device of a multi-device policy.
type DeviceConfig struct {
	Device   string `json:"device" yaml:"device"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

// SetDefaults fills the target device and capacity when omitted.
func (c *Config) SetDefaults() {
	if c.Device == "" {
		c.Device = device.CPU.String()
	}
	if c.Capacity == 0 {
		c.Capacity = c.BatchSize
	}
}

func (c Config) validate() (device.Device, error) {
	dev, err := device.Parse(c.Device)
	if err != nil {
		return device.Device{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.BatchSize <= 0 {
		return device.Device{}, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	}
	if c.Capacity < c.BatchSize {
		return device.Device{}, fmt.Errorf("%w: capacity %d below batch_size %d", ErrInvalidConfig, c.Capacity, c.BatchSize)
	}
	return dev, nil
}

// SimpleScheduler always targets one device with one batch size under a hard
// capacity ceiling.
//
// IsAvailable ignores the queried amount and checks whether one more batch of
// the configured size fits. Use CapacityScheduler to gate on the actual amount.
type SimpleScheduler struct {
	dev       device.Device
	batchSize int
	capacity  int
	loads     *loadTable
}

// NewSimpleScheduler validates cfg and returns a fixed-target scheduler.
func NewSimpleScheduler(cfg Config) (*SimpleScheduler, error) {
	cfg.SetDefaults()
	dev, err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return &SimpleScheduler{dev: dev, batchSize: cfg.BatchSize, capacity: cfg.Capacity, loads: newLoadTable()}, nil
}

func (s *SimpleScheduler) NextDevice() device.Device { return s.dev }

func (s *SimpleScheduler) NextBatchSize() int { return s.batchSize }

// Capacity returns the configured ceiling.
func (s *SimpleScheduler) Capacity() int { return s.capacity }

// IsAvailable reports load + batch size <= capacity. Both arguments are ignored.
func (s *SimpleScheduler) IsAvailable(_ device.Device, _ int) bool {
	return s.loads.fits(s.dev, s.batchSize, s.capacity)
}

func (s *SimpleScheduler) Dispatched(dev device.Device, n int) { s.loads.add(dev, n) }

func (s *SimpleScheduler) Completed(dev device.Device, n int) { s.loads.sub(dev, n) }

// Load returns the units currently in flight on dev.
func (s *SimpleScheduler) Load(dev device.Device) int { return s.loads.get(dev) }

// CapacityScheduler targets one device like SimpleScheduler but admits work
// when load + n <= capacity for the queried n.
type CapacityScheduler struct {
	SimpleScheduler
}

// NewCapacityScheduler validates cfg and returns the scheduler.
func NewCapacityScheduler(cfg Config) (*CapacityScheduler, error) {
	s, err := NewSimpleScheduler(cfg)
	if err != nil {
		return nil, err
	}
	return &CapacityScheduler{SimpleScheduler: *s}, nil
}

// IsAvailable reports load(dev) + n <= capacity.
func (s *CapacityScheduler) IsAvailable(dev device.Device, n int) bool {
	if dev != s.dev {
		return false
	}
	return s.loads.fits(dev, n, s.capacity)
}

var (
	_ Scheduler    = (*SimpleScheduler)(nil)
	_ Scheduler    = (*CapacityScheduler)(nil)
	_ LoadReporter = (*SimpleScheduler)(nil)
)
