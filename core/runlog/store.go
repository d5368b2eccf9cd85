// Package runlog persists one record per dispatch run so past runs can be
// inspected after the process exits. Records are stored either in rotating
// JSONL files or in a SQLite database.
package runlog

import (
	"context"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// RunRecord summarises one dispatch run.
type RunRecord struct {
	ID       string    `json:"id"`
	Mode     string    `json:"mode"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Batches  int       `json:"batches"`
	Units    int       `json:"units"`
	Devices  []string  `json:"devices,omitempty"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Query filters records. Zero values match everything.
type Query struct {
	Start  time.Time
	End    time.Time
	Status string
}

func (q Query) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Started.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Started.After(q.End) {
		return false
	}
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	return true
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// Config selects and tunes the store backend.
type Config struct {
	// Backend is "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation of JSONL files.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.Path == "" {
		switch c.Backend {
		case "jsonl":
			c.Path = "runs.jsonl"
		case "sqlite":
			c.Path = "runs.db"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 50
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "sqlite":
	default:
		return fmt.Errorf("unknown runlog backend %s", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("runlog path is required")
	}
	return nil
}

// New opens the store selected by cfg. The "none" backend returns a nil Store.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "jsonl":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown runlog backend %s", cfg.Backend)
}
