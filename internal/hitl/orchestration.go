package hitl

import (
	"time"

	"github.com/marcus-qen/aivcs/internal/metrics"
)

// EvaluateCheckpoint folds votes cast against checkpoint into its updated
// status. A single Reject short-circuits to Rejected; otherwise the
// checkpoint becomes Approved once it has accumulated at least
// RiskTier.MinApprovals() distinct approving voters, counting only the
// most recent vote per voter. Expired checkpoints (per now) are always
// reported Expired regardless of votes, unless already terminal.
func EvaluateCheckpoint(checkpoint ApprovalCheckpoint, votes []ApprovalVote, now time.Time) ApprovalCheckpoint {
	if checkpoint.Status.IsTerminal() {
		return checkpoint
	}

	if checkpoint.IsExpiredAt(now) {
		checkpoint.Status = CheckpointExpired
		metrics.RecordCheckpointDecision(checkpoint.RiskTier.String(), "expired")
		return checkpoint
	}

	latest := make(map[string]ApprovalVote)
	for _, v := range votes {
		if v.CheckpointID != checkpoint.CheckpointID {
			continue
		}
		existing, ok := latest[v.Voter]
		if !ok || v.VotedAt.After(existing.VotedAt) {
			latest[v.Voter] = v
		}
	}

	for _, v := range latest {
		if v.Decision.IsBlocking() {
			checkpoint.Status = RejectedStatus("rejected by " + v.Voter)
			metrics.RecordCheckpointDecision(checkpoint.RiskTier.String(), "rejected")
			return checkpoint
		}
	}

	approvals := uint32(0)
	for _, v := range latest {
		if v.Decision.IsApproval() {
			approvals++
		}
	}

	if approvals >= checkpoint.RiskTier.MinApprovals() {
		checkpoint.Status = CheckpointApproved
		metrics.RecordCheckpointDecision(checkpoint.RiskTier.String(), "approved")
		return checkpoint
	}

	return checkpoint
}

// SubmitVote validates that voter may cast decision against checkpoint
// and returns the recorded vote. A vote is rejected once the checkpoint
// has already reached a terminal status.
func SubmitVote(checkpoint ApprovalCheckpoint, voter string, decision VoteDecision, comment string, now time.Time) (ApprovalVote, error) {
	if checkpoint.Status.IsTerminal() {
		return ApprovalVote{}, &CheckpointClosedError{CheckpointID: checkpoint.CheckpointID}
	}
	return NewVote(voter, checkpoint.CheckpointID, decision, comment, now), nil
}

// ApplyIntervention resolves the status effect of an operator
// intervention on checkpoint: Pause/Edit move it to Paused, Continue
// returns it to Pending for further voting, Abort rejects it outright.
func ApplyIntervention(checkpoint ApprovalCheckpoint, intervention Intervention) ApprovalCheckpoint {
	switch {
	case intervention.Action.IsBlocking():
		checkpoint.Status = CheckpointPaused
	case intervention.Action.IsResume():
		if checkpoint.Status == CheckpointPaused {
			checkpoint.Status = CheckpointPending
		}
	case intervention.Action.IsTerminal():
		checkpoint.Status = RejectedStatus(intervention.Notes)
	}
	return checkpoint
}

// CheckpointClosedError reports an attempt to vote on a checkpoint that
// has already reached a terminal status.
type CheckpointClosedError struct {
	CheckpointID string
}

func (e *CheckpointClosedError) Error() string {
	return "checkpoint '" + e.CheckpointID + "' is already closed"
}
