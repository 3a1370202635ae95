package hitl

import "time"

// VoteDecision is the decision of a single ApprovalVote.
type VoteDecision string

const (
	VoteApprove        VoteDecision = "Approve"
	VoteReject         VoteDecision = "Reject"
	VoteRequestChanges VoteDecision = "RequestChanges"
)

// IsApproval reports whether d counts as an approval.
func (d VoteDecision) IsApproval() bool { return d == VoteApprove }

// IsBlocking reports whether d blocks the checkpoint.
func (d VoteDecision) IsBlocking() bool { return d == VoteReject }

// ApprovalVote is a single approval or rejection vote on a checkpoint.
type ApprovalVote struct {
	Voter        string
	CheckpointID string
	Decision     VoteDecision
	VotedAt      time.Time
	Comment      string
}

// NewVote creates a vote cast at now.
func NewVote(voter, checkpointID string, decision VoteDecision, comment string, now time.Time) ApprovalVote {
	return ApprovalVote{Voter: voter, CheckpointID: checkpointID, Decision: decision, VotedAt: now, Comment: comment}
}
