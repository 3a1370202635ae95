package hitl

import (
	"testing"
	"time"
)

func TestFinalizeArtifactSetsDigest(t *testing.T) {
	now := time.Now().UTC()
	cp := criticalCheckpoint(now)
	artifact := FinalizeArtifact(cp, nil, nil, now)
	if artifact.ContentDigest == "" {
		t.Fatal("expected a non-empty content digest")
	}
}

func TestVerifyIntegrityOk(t *testing.T) {
	now := time.Now().UTC()
	cp := criticalCheckpoint(now)
	artifact := FinalizeArtifact(cp, nil, nil, now)
	if !artifact.VerifyIntegrity() {
		t.Fatal("freshly finalized artifact should verify")
	}
}

func TestVerifyIntegrityDetectsTampering(t *testing.T) {
	now := time.Now().UTC()
	cp := criticalCheckpoint(now)
	artifact := FinalizeArtifact(cp, nil, nil, now)
	artifact.ContentDigest = "tampered"
	if artifact.VerifyIntegrity() {
		t.Fatal("tampered digest should fail verification")
	}
}

func TestSummarizeDecisionCountsVotes(t *testing.T) {
	now := time.Now().UTC()
	cp := criticalCheckpoint(now)
	cp.Status = CheckpointApproved
	votes := []ApprovalVote{
		NewVote("alice", cp.CheckpointID, VoteApprove, "LGTM", now),
		NewVote("bob", cp.CheckpointID, VoteApprove, "ok", now),
	}
	artifact := FinalizeArtifact(cp, votes, nil, now)
	summary := SummarizeDecision(artifact)

	if summary.Outcome != "approved" {
		t.Fatalf("outcome = %q, want approved", summary.Outcome)
	}
	if summary.ApprovalCount != 2 || summary.RejectionCount != 0 {
		t.Fatalf("approval/rejection counts = %d/%d, want 2/0", summary.ApprovalCount, summary.RejectionCount)
	}
}

func TestSummarizeDecisionIncludesRejectionReason(t *testing.T) {
	now := time.Now().UTC()
	cp := criticalCheckpoint(now)
	cp.Status = RejectedStatus("unsafe change")
	artifact := FinalizeArtifact(cp, []ApprovalVote{
		NewVote("eve", cp.CheckpointID, VoteReject, "unsafe", now),
	}, nil, now)
	summary := SummarizeDecision(artifact)

	if summary.Outcome != "rejected: unsafe change" {
		t.Fatalf("outcome = %q", summary.Outcome)
	}
	if summary.RejectionCount != 1 {
		t.Fatalf("rejection count = %d, want 1", summary.RejectionCount)
	}
}
