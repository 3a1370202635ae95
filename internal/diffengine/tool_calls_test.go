package diffengine

import (
	"testing"

	"github.com/marcus-qen/aivcs/internal/domain"
)

func toolCalledEvent(seq uint64, name string, params map[string]any) domain.RunEvent {
	payload := map[string]any{"tool_name": name}
	for k, v := range params {
		payload[k] = v
	}
	return domain.RunEvent{Seq: seq, Kind: "tool_called", Payload: payload}
}

func TestDiffToolCallsEmptyForIdenticalSequences(t *testing.T) {
	events := []domain.RunEvent{toolCalledEvent(1, "search", nil), toolCalledEvent(2, "write", nil)}
	diff := DiffToolCalls(events, events)
	if !diff.IsEmpty() {
		t.Fatalf("expected empty diff for identical sequences, got %+v", diff.Changes)
	}
}

func TestDiffToolCallsDetectsAdded(t *testing.T) {
	a := []domain.RunEvent{toolCalledEvent(1, "search", nil)}
	b := []domain.RunEvent{toolCalledEvent(1, "search", nil), toolCalledEvent(2, "write", nil)}

	diff := DiffToolCalls(a, b)
	var added bool
	for _, c := range diff.Changes {
		if c.Kind == ChangeAdded && c.Call.ToolName == "write" {
			added = true
		}
	}
	if !added {
		t.Fatalf("expected an added write call, got %+v", diff.Changes)
	}
}

func TestDiffToolCallsSymmetryAddedRemoved(t *testing.T) {
	a := []domain.RunEvent{toolCalledEvent(1, "search", nil)}
	b := []domain.RunEvent{toolCalledEvent(1, "search", nil), toolCalledEvent(2, "write", nil)}

	forward := DiffToolCalls(a, b)
	backward := DiffToolCalls(b, a)

	var forwardAdded, backwardRemoved bool
	for _, c := range forward.Changes {
		if c.Kind == ChangeAdded && c.Call.ToolName == "write" {
			forwardAdded = true
		}
	}
	for _, c := range backward.Changes {
		if c.Kind == ChangeRemoved && c.Call.ToolName == "write" {
			backwardRemoved = true
		}
	}
	if !forwardAdded || !backwardRemoved {
		t.Fatalf("expected symmetric added/removed, forward=%+v backward=%+v", forward.Changes, backward.Changes)
	}
}

func TestDiffToolCallsDetectsParamChange(t *testing.T) {
	a := []domain.RunEvent{toolCalledEvent(1, "search", map[string]any{"query": "go"})}
	b := []domain.RunEvent{toolCalledEvent(1, "search", map[string]any{"query": "rust"})}

	diff := DiffToolCalls(a, b)
	var found bool
	for _, c := range diff.Changes {
		if c.Kind == ChangeParamChanged {
			found = true
			if len(c.Deltas) == 0 {
				t.Fatal("expected at least one param delta")
			}
		}
	}
	if !found {
		t.Fatalf("expected a param-changed entry, got %+v", diff.Changes)
	}
}

func TestDiffToolCallsDetectsReorder(t *testing.T) {
	a := []domain.RunEvent{toolCalledEvent(1, "search", nil), toolCalledEvent(2, "write", nil)}
	b := []domain.RunEvent{toolCalledEvent(1, "write", nil), toolCalledEvent(2, "search", nil)}

	diff := DiffToolCalls(a, b)
	var reordered bool
	for _, c := range diff.Changes {
		if c.Kind == ChangeReordered {
			reordered = true
		}
	}
	if !reordered {
		t.Fatalf("expected a reorder change, got %+v", diff.Changes)
	}
}
