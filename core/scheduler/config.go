package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/batchflow/core/factory"
)

// LoadConfig loads a scheduler module description from a JSON or YAML file:
//
//	type: simple
//	conf:
//	  device: cpu
//	  batch_size: 345
//	  capacity: 345
func LoadConfig(path string) (factory.ModuleConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return factory.ModuleConfig{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeConfig(f, ext)
}

// DecodeConfig reads a scheduler module description from r.
func DecodeConfig(r io.Reader, format string) (factory.ModuleConfig, error) {
	var cfg factory.ModuleConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", format)
	}
	return cfg, nil
}
