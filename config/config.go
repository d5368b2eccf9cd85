package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/batchflow/core/dispatch"
	"github.com/kilianp07/batchflow/core/factory"
	"github.com/kilianp07/batchflow/core/metrics"
	"github.com/kilianp07/batchflow/core/runlog"
	"github.com/kilianp07/batchflow/infra/mqtt"
)

type Config struct {
	Scheduler factory.ModuleConfig `json:"scheduler"`
	Dispatch  dispatch.Config      `json:"dispatch"`
	Metrics   metrics.Config       `json:"metrics"`
	RunLog    runlog.Config        `json:"runlog"`
	MQTT      mqtt.Config          `json:"mqtt"`
	API       APIConfig            `json:"api"`
}

// Default returns the configuration used when no file is given: a simple
// scheduler on the CPU and a sequential dispatcher.
func Default() *Config {
	cfg := &Config{
		Scheduler: factory.ModuleConfig{
			Type: "simple",
			Conf: map[string]any{"device": "cpu", "batch_size": 345},
		},
	}
	cfg.SetDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides: K_DISPATCH__MODE sets dispatch.mode.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	if c.Scheduler.Type == "" {
		c.Scheduler.Type = "simple"
	}
	c.Dispatch.SetDefaults()
	c.RunLog.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if err := c.RunLog.Validate(); err != nil {
		return fmt.Errorf("runlog: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if c.API.Addr != "" && c.RunLog.Backend == "none" {
		return fmt.Errorf("api: serving runs requires a runlog backend")
	}
	return nil
}
