package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/marcus-qen/aivcs/internal/domain"
)

func appendN(t *testing.T, ctx context.Context, l *Ledger, runID domain.RunID, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		err := l.AppendEvent(ctx, runID, domain.RunEvent{
			Seq:       uint64(i),
			Kind:      "node_entered",
			Payload:   map[string]any{"node_id": "n", "iteration": i},
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestEventOrderingDenseFromOne(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	runID, err := l.CreateRun(ctx, "deadbeef", domain.RunMetadata{AgentName: "a"})
	if err != nil {
		t.Fatal(err)
	}
	appendN(t, ctx, l, runID, 5)

	events, err := l.GetEvents(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.Seq != uint64(i+1) {
			t.Fatalf("expected seq %d at index %d, got %d", i+1, i, ev.Seq)
		}
	}
}

func TestAppendDuplicateSeqRejected(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	runID, _ := l.CreateRun(ctx, "deadbeef", domain.RunMetadata{AgentName: "a"})
	appendN(t, ctx, l, runID, 1)

	err := l.AppendEvent(ctx, runID, domain.RunEvent{Seq: 1, Kind: "node_entered", Payload: map[string]any{"node_id": "n", "iteration": 1}})
	if _, ok := err.(*domain.DuplicateSeqError); !ok {
		t.Fatalf("expected DuplicateSeqError, got %v", err)
	}
}

func TestAppendOutOfOrderRejected(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	runID, _ := l.CreateRun(ctx, "deadbeef", domain.RunMetadata{AgentName: "a"})

	err := l.AppendEvent(ctx, runID, domain.RunEvent{Seq: 2, Kind: "node_entered", Payload: map[string]any{"node_id": "n", "iteration": 1}})
	if _, ok := err.(*domain.OutOfOrderError); !ok {
		t.Fatalf("expected OutOfOrderError, got %v", err)
	}
}

func TestAppendAfterTerminalRejected(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	runID, _ := l.CreateRun(ctx, "deadbeef", domain.RunMetadata{AgentName: "a"})
	appendN(t, ctx, l, runID, 1)

	if err := l.CompleteRun(ctx, runID, domain.RunSummary{TotalEvents: 1, Success: true}); err != nil {
		t.Fatal(err)
	}

	err := l.AppendEvent(ctx, runID, domain.RunEvent{Seq: 2, Kind: "node_entered", Payload: map[string]any{"node_id": "n", "iteration": 1}})
	if _, ok := err.(*domain.RunTerminalError); !ok {
		t.Fatalf("expected RunTerminalError, got %v", err)
	}
}

func TestCompleteRunSetsStatusAndSummary(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	runID, _ := l.CreateRun(ctx, "deadbeef", domain.RunMetadata{AgentName: "a"})
	appendN(t, ctx, l, runID, 2)

	if err := l.CompleteRun(ctx, runID, domain.RunSummary{TotalEvents: 2, Success: true}); err != nil {
		t.Fatal(err)
	}

	run, err := l.GetRun(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunCompleted {
		t.Fatalf("expected COMPLETED, got %s", run.Status)
	}
	if run.Summary == nil || run.Summary.TotalEvents != 2 {
		t.Fatalf("expected summary with 2 events, got %+v", run.Summary)
	}
}

func TestInvalidEventRejectedBeforePersistence(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	runID, _ := l.CreateRun(ctx, "deadbeef", domain.RunMetadata{AgentName: "a"})

	err := l.AppendEvent(ctx, runID, domain.RunEvent{Seq: 1, Kind: "BogusKind", Payload: map[string]any{}})
	if err == nil {
		t.Fatal("expected validation error")
	}

	events, _ := l.GetEvents(ctx, runID)
	if len(events) != 0 {
		t.Fatalf("expected nothing persisted on validation failure, got %d events", len(events))
	}
}

func TestGetRunNotFound(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	if _, err := l.GetRun(ctx, domain.RunID("missing")); err == nil {
		t.Fatal("expected RunNotFoundError")
	}
}

func TestListRunsFiltersBySpecDigest(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	r1, _ := l.CreateRun(ctx, "aaa", domain.RunMetadata{AgentName: "a"})
	_, _ = l.CreateRun(ctx, "bbb", domain.RunMetadata{AgentName: "a"})

	runs, err := l.ListRuns(ctx, "aaa")
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != r1 {
		t.Fatalf("expected only run %s, got %+v", r1, runs)
	}
}

func TestReplayDigestEqualForIdenticalEvents(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []domain.RunEvent{
		{Seq: 1, Kind: "graph_started", Payload: map[string]any{"graph_name": "g", "entry_point": "start"}, Timestamp: ts},
		{Seq: 2, Kind: "graph_completed", Payload: map[string]any{"iterations": 1, "duration_ms": 100}, Timestamp: ts},
	}
	eventsCopy := make([]domain.RunEvent, len(events))
	copy(eventsCopy, events)

	d1, err := domain.ComputeReplayDigest(events)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := domain.ComputeReplayDigest(eventsCopy)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Fatalf("expected equal replay digests, got %s != %s", d1, d2)
	}
}
