package runlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecords(base time.Time) []RunRecord {
	return []RunRecord{
		{ID: "a", Mode: "sequential", Started: base, Finished: base.Add(time.Second), Batches: 6, Units: 1950, Status: StatusOK},
		{ID: "b", Mode: "concurrent", Started: base.Add(time.Minute), Finished: base.Add(2 * time.Minute), Batches: 2, Units: 10, Status: StatusFailed, Error: "boom"},
		{ID: "c", Mode: "sequential", Started: base.Add(time.Hour), Finished: base.Add(time.Hour), Status: StatusCanceled},
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, r := range sampleRecords(base) {
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append %s: %v", r.ID, err)
		}
	}
	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a" || all[2].ID != "c" {
		t.Fatalf("unexpected records %+v", all)
	}
	if all[0].Duration() != time.Second || all[0].Units != 1950 {
		t.Fatalf("record not round-tripped: %+v", all[0])
	}
	failed, err := store.Query(ctx, Query{Status: StatusFailed})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(failed) != 1 || failed[0].Error != "boom" {
		t.Fatalf("unexpected failed records %+v", failed)
	}
	window, err := store.Query(ctx, Query{Start: base.Add(time.Second), End: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("query window: %v", err)
	}
	if len(window) != 1 || window[0].ID != "b" {
		t.Fatalf("unexpected window records %+v", window)
	}
}

func TestRotatingJSONLStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestRotatingJSONLStoreEmpty(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"), 1, 1, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	recs, err := store.Query(context.Background(), Query{})
	if err != nil || len(recs) != 0 {
		t.Fatalf("expected no records, got %v (%v)", recs, err)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	exerciseStore(t, store)
}

func TestConfig(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.Backend != "none" || c.Validate() != nil {
		t.Fatalf("bad defaults %+v", c)
	}
	s, err := New(c)
	if err != nil || s != nil {
		t.Fatalf("none backend should yield nil store, got %v %v", s, err)
	}
	c = Config{Backend: "sqlite"}
	c.SetDefaults()
	if c.Path != "runs.db" {
		t.Fatalf("sqlite default path %q", c.Path)
	}
	if err := (Config{Backend: "csv", Path: "x"}).Validate(); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	if err := (Config{Backend: "jsonl"}).Validate(); err == nil {
		t.Fatalf("expected missing path error")
	}
}
