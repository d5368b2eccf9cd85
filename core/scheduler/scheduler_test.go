package scheduler

import (
	"errors"
	"testing"

	"github.com/kilianp07/batchflow/core/device"
)

var gpu0 = device.New("gpu", 0)

func newSimple(t *testing.T, batch, capacity int) *SimpleScheduler {
	t.Helper()
	s, err := NewSimpleScheduler(Config{Device: "cpu", BatchSize: batch, Capacity: capacity})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestSimpleSchedulerTarget(t *testing.T) {
	s := newSimple(t, 345, 345)
	if s.NextDevice() != device.CPU {
		t.Fatalf("device %v", s.NextDevice())
	}
	if s.NextBatchSize() != 345 {
		t.Fatalf("batch size %d", s.NextBatchSize())
	}
}

func TestSimpleSchedulerAdmission(t *testing.T) {
	s := newSimple(t, 10, 25)
	if !s.IsAvailable(device.CPU, 10) {
		t.Fatalf("empty scheduler should admit")
	}
	s.Dispatched(device.CPU, 10)
	if !s.IsAvailable(device.CPU, 10) {
		t.Fatalf("10+10 <= 25 should admit")
	}
	s.Dispatched(device.CPU, 10)
	if s.IsAvailable(device.CPU, 10) {
		t.Fatalf("20+10 > 25 should not admit")
	}
	// The queried amount is ignored: 5 would fit but a full batch does not.
	if s.IsAvailable(device.CPU, 5) {
		t.Fatalf("admission must gate on the configured batch size")
	}
	s.Completed(device.CPU, 10)
	if !s.IsAvailable(gpu0, 1000) {
		t.Fatalf("admission must ignore the queried device and amount")
	}
}

func TestRoundTripLaw(t *testing.T) {
	s := newSimple(t, 4, 16)
	s.Dispatched(device.CPU, 3)
	before := s.Load(device.CPU)
	s.Dispatched(device.CPU, 7)
	if s.Load(device.CPU) != before+7 {
		t.Fatalf("load after dispatch %d", s.Load(device.CPU))
	}
	s.Completed(device.CPU, 7)
	if s.Load(device.CPU) != before {
		t.Fatalf("load after completion %d, want %d", s.Load(device.CPU), before)
	}
}

func TestLoadIsPerDevice(t *testing.T) {
	s := newSimple(t, 4, 16)
	s.Dispatched(gpu0, 4)
	if s.Load(device.CPU) != 0 || s.Load(gpu0) != 4 {
		t.Fatalf("loads cpu=%d gpu=%d", s.Load(device.CPU), s.Load(gpu0))
	}
}

func expectProtocolError(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		pe, ok := r.(*ProtocolError)
		if !ok {
			t.Fatalf("expected *ProtocolError panic, got %v", r)
		}
		if !errors.Is(pe, target) {
			t.Fatalf("expected %v, got %v", target, pe)
		}
	}()
	fn()
}

func TestUnpairedCompletionPanics(t *testing.T) {
	s := newSimple(t, 4, 16)
	s.Dispatched(device.CPU, 2)
	expectProtocolError(t, ErrUnbalanced, func() { s.Completed(device.CPU, 3) })
	expectProtocolError(t, ErrUnbalanced, func() { s.Completed(gpu0, 1) })
	expectProtocolError(t, ErrNonPositive, func() { s.Dispatched(device.CPU, 0) })
	expectProtocolError(t, ErrNonPositive, func() { s.Completed(device.CPU, -1) })
	if s.Load(device.CPU) != 2 {
		t.Fatalf("load changed by rejected calls: %d", s.Load(device.CPU))
	}
}

func TestSimpleSchedulerInvalidConfig(t *testing.T) {
	cases := []Config{
		{Device: "cpu", BatchSize: 0, Capacity: 10},
		{Device: "cpu", BatchSize: 10, Capacity: 5},
		{Device: "gpu:x", BatchSize: 1, Capacity: 1},
	}
	for _, c := range cases {
		if _, err := NewSimpleScheduler(c); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("config %+v: expected ErrInvalidConfig, got %v", c, err)
		}
	}
}

func TestSimpleSchedulerDefaults(t *testing.T) {
	s, err := NewSimpleScheduler(Config{BatchSize: 8})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.NextDevice() != device.CPU || s.Capacity() != 8 {
		t.Fatalf("defaults not applied: %v %d", s.NextDevice(), s.Capacity())
	}
}

func TestCapacitySchedulerHonoursAmount(t *testing.T) {
	s, err := NewCapacityScheduler(Config{Device: "gpu:0", BatchSize: 10, Capacity: 25})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Dispatched(gpu0, 20)
	if !s.IsAvailable(gpu0, 5) {
		t.Fatalf("20+5 <= 25 should admit")
	}
	if s.IsAvailable(gpu0, 6) {
		t.Fatalf("20+6 > 25 should not admit")
	}
	if s.IsAvailable(device.CPU, 1) {
		t.Fatalf("foreign device should not admit")
	}
}

func TestRoundRobinScheduler(t *testing.T) {
	s, err := NewRoundRobinScheduler(Config{
		BatchSize: 4,
		Capacity:  8,
		Devices:   []DeviceConfig{{Device: "cpu"}, {Device: "gpu:0", Capacity: 4}},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got := []device.Device{s.NextDevice(), s.NextDevice(), s.NextDevice()}
	want := []device.Device{device.CPU, gpu0, device.CPU}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation %v want %v", got, want)
		}
	}
	s.Dispatched(gpu0, 4)
	if s.IsAvailable(gpu0, 1) {
		t.Fatalf("gpu at capacity")
	}
	if !s.IsAvailable(device.CPU, 8) {
		t.Fatalf("cpu should admit up to 8")
	}
	if s.IsAvailable(device.New("tpu", 0), 1) {
		t.Fatalf("unknown device should not admit")
	}
	s.Completed(gpu0, 4)
	if s.Load(gpu0) != 0 {
		t.Fatalf("load %d", s.Load(gpu0))
	}
}

func TestRoundRobinInvalid(t *testing.T) {
	cases := []Config{
		{BatchSize: 4},
		{BatchSize: 0, Devices: []DeviceConfig{{Device: "cpu", Capacity: 4}}},
		{BatchSize: 4, Devices: []DeviceConfig{{Device: "cpu", Capacity: 2}}},
		{BatchSize: 4, Capacity: 4, Devices: []DeviceConfig{{Device: "cpu"}, {Device: "CPU"}}},
	}
	for _, c := range cases {
		if _, err := NewRoundRobinScheduler(c); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("config %+v: expected ErrInvalidConfig, got %v", c, err)
		}
	}
}
