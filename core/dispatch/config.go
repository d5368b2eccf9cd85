package dispatch

import (
	"fmt"
	"time"
)

// Dispatch modes.
const (
	ModeSequential = "sequential"
	ModeConcurrent = "concurrent"
)

// Config defines dispatch-related settings.
type Config struct {
	// Mode selects the dispatcher built by the service.
	Mode string `json:"mode"`
	// BatchBudget caps every batch request when positive.
	BatchBudget int `json:"batch_budget"`
	// PollIntervalMS is how often admission is re-checked while the scheduler
	// is at capacity.
	PollIntervalMS int `json:"poll_interval_ms"`
	// MaxInFlight bounds concurrent worker calls. Zero leaves the bound to the
	// scheduler alone.
	MaxInFlight int `json:"max_in_flight"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeSequential
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = 10
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Mode != ModeSequential && c.Mode != ModeConcurrent {
		return fmt.Errorf("unknown dispatch mode %s", c.Mode)
	}
	if c.BatchBudget < 0 {
		return fmt.Errorf("batch_budget must not be negative")
	}
	if c.MaxInFlight < 0 {
		return fmt.Errorf("max_in_flight must not be negative")
	}
	return nil
}

func (c Config) pollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return 10 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
