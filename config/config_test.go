package config

import (
	"os"
	"path/filepath"
	"testing"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `scheduler:
  type: "capacity"
  conf:
    device: "gpu:1"
    batch_size: 345
    capacity: 690
dispatch:
  mode: "concurrent"
  batch_budget: 200
  max_in_flight: 4
metrics:
  sinks:
    - type: "nop"
  prometheus_port: ":9100"
runlog:
  backend: "sqlite"
  path: "runs.db"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  topic: "jobs/"
  qos: 1
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"scheduler.type", cfg.Scheduler.Type, "capacity"},
		{"scheduler.conf.device", cfg.Scheduler.Conf["device"], "gpu:1"},
		{"dispatch.mode", cfg.Dispatch.Mode, "concurrent"},
		{"dispatch.batch_budget", cfg.Dispatch.BatchBudget, 200},
		{"dispatch.max_in_flight", cfg.Dispatch.MaxInFlight, 4},
		{"dispatch.poll_interval_ms", cfg.Dispatch.PollIntervalMS, 10},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"runlog.backend", cfg.RunLog.Backend, "sqlite"},
		{"runlog.path", cfg.RunLog.Path, "runs.db"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.topic", cfg.MQTT.Topic, "jobs"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSONDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"scheduler":{"conf":{"batch_size":10}}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Scheduler.Type != "simple" {
		t.Errorf("scheduler type = %s", cfg.Scheduler.Type)
	}
	if cfg.Dispatch.Mode != "sequential" {
		t.Errorf("dispatch mode = %s", cfg.Dispatch.Mode)
	}
	if cfg.RunLog.Backend != "none" {
		t.Errorf("runlog backend = %s", cfg.RunLog.Backend)
	}
	if cfg.MQTT.Enabled {
		t.Errorf("mqtt should be disabled by default")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dispatch:\n  mode: sequential\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_DISPATCH__MODE", "concurrent")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatch.Mode != "concurrent" {
		t.Errorf("env override not applied: %s", cfg.Dispatch.Mode)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"mode.yaml":   "dispatch:\n  mode: parallel\n",
		"runlog.yaml": "runlog:\n  backend: csv\n",
		"mqtt.yaml":   "mqtt:\n  enabled: true\n",
		"api.yaml":    "api:\n  addr: \":8080\"\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(dir, "config.toml")); err == nil {
		t.Errorf("expected unsupported format error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Scheduler.Conf["batch_size"] != 345 {
		t.Errorf("unexpected default batch size %v", cfg.Scheduler.Conf["batch_size"])
	}
}
