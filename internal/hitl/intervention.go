package hitl

import (
	"time"

	"github.com/google/uuid"
)

// InterventionAction is the type of an operator intervention.
type InterventionAction struct {
	kind          string
	changeSummary string
	reason        string
}

// PauseAction pauses execution at a checkpoint.
func PauseAction() InterventionAction { return InterventionAction{kind: "pause"} }

// EditAction edits parameters or state before continuing, recording
// changeSummary for the audit trail.
func EditAction(changeSummary string) InterventionAction {
	return InterventionAction{kind: "edit", changeSummary: changeSummary}
}

// ContinueAction resumes execution after a pause or edit.
func ContinueAction() InterventionAction { return InterventionAction{kind: "continue"} }

// AbortAction terminates the run entirely, recording reason.
func AbortAction(reason string) InterventionAction {
	return InterventionAction{kind: "abort", reason: reason}
}

// Kind returns the action's discriminant name.
func (a InterventionAction) Kind() string { return a.kind }

// IsBlocking reports whether this action pauses execution.
func (a InterventionAction) IsBlocking() bool { return a.kind == "pause" || a.kind == "edit" }

// IsResume reports whether this action resumes execution.
func (a InterventionAction) IsResume() bool { return a.kind == "continue" }

// IsTerminal reports whether this action terminates execution.
func (a InterventionAction) IsTerminal() bool { return a.kind == "abort" }

// Intervention is an operator action on a running pipeline or checkpoint.
type Intervention struct {
	InterventionID string
	RunID          string
	CheckpointID   string // empty when not tied to a specific checkpoint
	Operator       string
	Action         InterventionAction
	InitiatedAt    time.Time
	ResolvedAt     *time.Time
	Notes          string
}

// NewIntervention creates an intervention initiated at now. Continue and
// Abort actions resolve immediately; Pause and Edit remain unresolved
// until a subsequent Continue or Abort.
func NewIntervention(runID, checkpointID, operator string, action InterventionAction, notes string, now time.Time) Intervention {
	var resolvedAt *time.Time
	if action.IsResume() || action.IsTerminal() {
		resolvedAt = &now
	}
	return Intervention{
		InterventionID: uuid.NewString(),
		RunID:          runID,
		CheckpointID:   checkpointID,
		Operator:       operator,
		Action:         action,
		InitiatedAt:    now,
		ResolvedAt:     resolvedAt,
		Notes:          notes,
	}
}
