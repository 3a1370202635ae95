package hitl

import (
	"time"

	"github.com/marcus-qen/aivcs/internal/domain"
)

// HitlArtifact is the tamper-evident audit record for a checkpoint's
// final decision: the checkpoint itself plus every vote and intervention
// applied to it, sealed with a content digest at finalization.
type HitlArtifact struct {
	Checkpoint    ApprovalCheckpoint
	Votes         []ApprovalVote
	Interventions []Intervention
	FinalizedAt   time.Time
	ContentDigest string
}

// digestPayload is the subset of the artifact hashed for tamper evidence:
// checkpoint and run ids, status kind, vote and intervention counts, and
// FinalizedAt. The contents of votes and interventions, the checkpoint's
// label, risk tier and explanation, and ContentDigest itself are not
// hashed.
type digestPayload struct {
	CheckpointID       string `json:"checkpoint_id"`
	RunID              string `json:"run_id"`
	Status             string `json:"status"`
	VotesCount         int    `json:"votes_count"`
	InterventionsCount int    `json:"interventions_count"`
	FinalizedAt        string `json:"finalized_at"`
}

func (a HitlArtifact) computeDigest() string {
	payload := digestPayload{
		CheckpointID:       a.Checkpoint.CheckpointID,
		RunID:              a.Checkpoint.RunID,
		Status:             a.Checkpoint.Status.Kind(),
		VotesCount:         len(a.Votes),
		InterventionsCount: len(a.Interventions),
		FinalizedAt:        a.FinalizedAt.UTC().Format(time.RFC3339Nano),
	}
	digest, err := domain.CanonicalDigest(payload)
	if err != nil {
		return ""
	}
	return digest.String()
}

// FinalizeArtifact seals checkpoint, votes, and interventions into an
// immutable artifact stamped at now, computing its content digest.
func FinalizeArtifact(checkpoint ApprovalCheckpoint, votes []ApprovalVote, interventions []Intervention, now time.Time) HitlArtifact {
	artifact := HitlArtifact{
		Checkpoint:    checkpoint,
		Votes:         votes,
		Interventions: interventions,
		FinalizedAt:   now,
	}
	artifact.ContentDigest = artifact.computeDigest()
	return artifact
}

// VerifyIntegrity reports whether the artifact's stored digest still
// matches its recomputed content digest.
func (a HitlArtifact) VerifyIntegrity() bool {
	return a.ContentDigest == a.computeDigest()
}

// DecisionSummary is a flattened view of an artifact for explainability
// reporting and dashboards.
type DecisionSummary struct {
	CheckpointID      string
	Label             string
	RiskTier          RiskTier
	Outcome           string
	ApprovalCount     uint32
	RejectionCount    uint32
	InterventionCount int
	Explanation       ExplainabilitySummary
}

// SummarizeDecision builds a DecisionSummary from a finalized artifact.
func SummarizeDecision(artifact HitlArtifact) DecisionSummary {
	var approvals, rejections uint32
	for _, v := range artifact.Votes {
		switch {
		case v.Decision.IsApproval():
			approvals++
		case v.Decision.IsBlocking():
			rejections++
		}
	}

	outcome := artifact.Checkpoint.Status.Kind()
	if outcome == "rejected" && artifact.Checkpoint.Status.Reason() != "" {
		outcome = "rejected: " + artifact.Checkpoint.Status.Reason()
	}

	return DecisionSummary{
		CheckpointID:      artifact.Checkpoint.CheckpointID,
		Label:             artifact.Checkpoint.Label,
		RiskTier:          artifact.Checkpoint.RiskTier,
		Outcome:           outcome,
		ApprovalCount:     approvals,
		RejectionCount:    rejections,
		InterventionCount: len(artifact.Interventions),
		Explanation:       artifact.Checkpoint.Explanation,
	}
}
