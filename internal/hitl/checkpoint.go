package hitl

import (
	"time"

	"github.com/google/uuid"
)

// ExplainabilitySummary gives a human reviewer context for a gated action.
type ExplainabilitySummary struct {
	ActionDescription string
	ChangesSummary    string
	FlagReason        string
}

// CheckpointStatus is the current state of an ApprovalCheckpoint.
type CheckpointStatus struct {
	kind   string
	reason string
}

var (
	CheckpointPending  = CheckpointStatus{kind: "pending"}
	CheckpointApproved = CheckpointStatus{kind: "approved"}
	CheckpointExpired  = CheckpointStatus{kind: "expired"}
	CheckpointPaused   = CheckpointStatus{kind: "paused"}
)

// RejectedStatus builds a Rejected status carrying reason.
func RejectedStatus(reason string) CheckpointStatus {
	return CheckpointStatus{kind: "rejected", reason: reason}
}

// Kind returns the status's discriminant name.
func (s CheckpointStatus) Kind() string { return s.kind }

// Reason returns the rejection reason, if this is a Rejected status.
func (s CheckpointStatus) Reason() string { return s.reason }

// AllowsProceed reports whether the checkpoint allows execution to continue.
func (s CheckpointStatus) AllowsProceed() bool { return s.kind == "approved" }

// IsTerminal reports whether the checkpoint has reached a final state.
func (s CheckpointStatus) IsTerminal() bool {
	return s.kind == "approved" || s.kind == "rejected" || s.kind == "expired"
}

// ApprovalCheckpoint is a pause point in a run awaiting human approval.
type ApprovalCheckpoint struct {
	CheckpointID string
	Label        string
	RunID        string
	RiskTier     RiskTier
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	Status       CheckpointStatus
	Explanation  ExplainabilitySummary
}

// NewCheckpoint creates a pending checkpoint for runID, expiring after
// timeoutSecs (nil for no expiry).
func NewCheckpoint(label, runID string, riskTier RiskTier, explanation ExplainabilitySummary, timeoutSecs *uint64, now time.Time) ApprovalCheckpoint {
	var expiresAt *time.Time
	if timeoutSecs != nil {
		t := now.Add(time.Duration(*timeoutSecs) * time.Second)
		expiresAt = &t
	}
	return ApprovalCheckpoint{
		CheckpointID: uuid.NewString(),
		Label:        label,
		RunID:        runID,
		RiskTier:     riskTier,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
		Status:       CheckpointPending,
		Explanation:  explanation,
	}
}

// IsExpiredAt reports whether the checkpoint has passed its expiry at now.
func (c ApprovalCheckpoint) IsExpiredAt(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}
