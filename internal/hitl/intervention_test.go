package hitl

import (
	"testing"
	"time"
)

func TestInterventionActionKinds(t *testing.T) {
	if PauseAction().Kind() != "pause" {
		t.Fatal("pause kind mismatch")
	}
	if EditAction("fix param").Kind() != "edit" {
		t.Fatal("edit kind mismatch")
	}
	if ContinueAction().Kind() != "continue" {
		t.Fatal("continue kind mismatch")
	}
	if AbortAction("unsafe").Kind() != "abort" {
		t.Fatal("abort kind mismatch")
	}
}

func TestInterventionActionPredicates(t *testing.T) {
	if !PauseAction().IsBlocking() || !EditAction("x").IsBlocking() {
		t.Fatal("pause/edit should be blocking")
	}
	if ContinueAction().IsBlocking() || AbortAction("x").IsBlocking() {
		t.Fatal("continue/abort should not be blocking")
	}
	if !ContinueAction().IsResume() {
		t.Fatal("continue should be a resume")
	}
	if !AbortAction("x").IsTerminal() {
		t.Fatal("abort should be terminal")
	}
}

func TestNewInterventionResolvesResumeAndAbortImmediately(t *testing.T) {
	now := time.Now().UTC()

	pause := NewIntervention("run-1", "cp-1", "operator-a", PauseAction(), "", now)
	if pause.ResolvedAt != nil {
		t.Fatal("pause should remain unresolved")
	}

	cont := NewIntervention("run-1", "cp-1", "operator-a", ContinueAction(), "", now)
	if cont.ResolvedAt == nil || !cont.ResolvedAt.Equal(now) {
		t.Fatal("continue should resolve immediately")
	}

	abort := NewIntervention("run-1", "", "operator-a", AbortAction("unsafe change"), "", now)
	if abort.ResolvedAt == nil || !abort.ResolvedAt.Equal(now) {
		t.Fatal("abort should resolve immediately")
	}
	if abort.InterventionID == "" {
		t.Fatal("expected a generated intervention id")
	}
}
