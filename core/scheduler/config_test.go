package scheduler

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/batchflow/core/device"
	"github.com/kilianp07/batchflow/core/factory"
)

func TestDecodeConfigYAML(t *testing.T) {
	data := "type: capacity\nconf:\n  device: gpu:0\n  batch_size: 64\n  capacity: 128\n"
	mc, err := DecodeConfig(bytes.NewBufferString(data), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s, err := New(mc)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cs, ok := s.(*CapacityScheduler)
	if !ok {
		t.Fatalf("unexpected type %T", s)
	}
	if cs.NextDevice() != gpu0 || cs.NextBatchSize() != 64 || cs.Capacity() != 128 {
		t.Fatalf("bad scheduler %v %d %d", cs.NextDevice(), cs.NextBatchSize(), cs.Capacity())
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sched.json")
	data := `{"type":"round_robin","conf":{"batch_size":2,"capacity":4,"devices":[{"device":"cpu"},{"device":"cuda:1","capacity":2}]}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mc, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s, err := New(mc)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rr := s.(*RoundRobinScheduler)
	devs := rr.Devices()
	if len(devs) != 2 || devs[1] != device.New("cuda", 1) {
		t.Fatalf("devices %v", devs)
	}
}

func TestNewDefaultsToSimple(t *testing.T) {
	s, err := New(factory.ModuleConfig{Conf: map[string]any{"batch_size": 5}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.(*SimpleScheduler); !ok {
		t.Fatalf("unexpected type %T", s)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeConfig(bytes.NewBufferString("{}"), "toml"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := DecodeConfig(bytes.NewBufferString(":"), "yaml"); err == nil {
		t.Fatalf("expected yaml error")
	}
	path := filepath.Join(t.TempDir(), "sched.txt")
	if err := os.WriteFile(path, []byte("bad"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for wrong ext")
	}
	if _, err := New(factory.ModuleConfig{Type: "unknown"}); err == nil {
		t.Fatalf("expected unknown type error")
	}
}
