package domain

import "time"

// RunStatus is the lifecycle state of a Run.
type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
	RunCancelled RunStatus = "CANCELLED"
)

// IsTerminal reports whether s is a terminal status; terminal runs reject
// further event appends and lifecycle transitions.
func (s RunStatus) IsTerminal() bool {
	return s == RunCompleted || s == RunFailed || s == RunCancelled
}

// RunMetadata is caller-supplied, free-form context attached to a run at
// creation time.
type RunMetadata struct {
	GitSHA    string         `json:"git_sha,omitempty"`
	AgentName string         `json:"agent_name"`
	Tags      map[string]any `json:"tags,omitempty"`
}

// RunSummary is stamped onto a Run when it reaches a terminal status.
type RunSummary struct {
	TotalEvents      uint64  `json:"total_events"`
	FinalStateDigest *string `json:"final_state_digest,omitempty"`
	DurationMs       uint64  `json:"duration_ms"`
	Success          bool    `json:"success"`
	ReplayDigest     string  `json:"replay_digest,omitempty"`
}

// RunID identifies a Run. Construction is backend-specific (typically a
// UUID), so it is kept as an opaque string wrapper rather than a fixed
// representation.
type RunID string

// Run is one execution of an agent, anchored to an AgentSpec by digest.
type Run struct {
	RunID      RunID       `json:"run_id"`
	SpecDigest string      `json:"spec_digest"`
	GitSHA     string      `json:"git_sha,omitempty"`
	AgentName  string      `json:"agent_name"`
	Tags       any         `json:"tags,omitempty"`
	Status     RunStatus   `json:"status"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Summary    *RunSummary `json:"summary,omitempty"`
}

// RunEvent is one atomic point in a run's trace.
type RunEvent struct {
	Seq       uint64    `json:"seq"`
	Kind      string    `json:"kind"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// ReplaySummary is the output of replaying a run's event stream: the
// golden digest over the ordered, normalised event sequence.
type ReplaySummary struct {
	RunID        RunID  `json:"run_id"`
	TotalEvents  uint64 `json:"total_events"`
	ReplayDigest string `json:"replay_digest"`
}

// normalisedEvent is the fixed shape replay digests are computed over:
// [{seq, kind, payload, ts}], independent of Go struct field ordering.
type normalisedEvent struct {
	Seq     uint64 `json:"seq"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
	TS      string `json:"ts"`
}

// ComputeReplayDigest computes the canonical digest over events in the
// order given (it does not sort them; ledgers return events by seq
// ascending), normalised to the fixed replay shape. Two independent
// runs with identical ordered events and identical timestamps produce the
// same digest — this is the system's correctness canary.
func ComputeReplayDigest(events []RunEvent) (string, error) {
	normalised := make([]normalisedEvent, len(events))
	for i, ev := range events {
		normalised[i] = normalisedEvent{
			Seq:     ev.Seq,
			Kind:    ev.Kind,
			Payload: ev.Payload,
			TS:      ev.Timestamp.UTC().Format(time.RFC3339Nano),
		}
	}
	d, err := CanonicalDigest(normalised)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}
