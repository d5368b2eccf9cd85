package events

import "time"

// Event is implemented by every progress event.
type Event interface {
	// Topic is the sub-topic the event is published under, "batch" or "run".
	Topic() string
}

// Phase describes where a batch is in its lifecycle.
type Phase string

const (
	PhaseDispatched Phase = "dispatched"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// BatchEvent reports the lifecycle of one batch.
type BatchEvent struct {
	RunID    string        `json:"run_id"`
	Index    int           `json:"index"`
	Device   string        `json:"device"`
	Offset   int           `json:"offset"`
	Count    int           `json:"count"`
	Phase    Phase         `json:"phase"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	Err      string        `json:"error,omitempty"`
	Time     time.Time     `json:"time"`
}

func (BatchEvent) Topic() string { return "batch" }

// RunEvent reports the start or the end of a run. Finished is false for the
// start event.
type RunEvent struct {
	RunID    string        `json:"run_id"`
	Mode     string        `json:"mode"`
	Finished bool          `json:"finished"`
	Batches  int           `json:"batches"`
	Units    int           `json:"units"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	Err      string        `json:"error,omitempty"`
	Time     time.Time     `json:"time"`
}

func (RunEvent) Topic() string { return "run" }
