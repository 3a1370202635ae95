// Package diffengine implements the three diff views over run event
// streams: tool-call diff (LCS alignment), node-path diff (common-prefix
// divergence), and scoped-state diff (JSON-pointer deltas).
package diffengine

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/marcus-qen/aivcs/internal/domain"
)

// ToolCall is a single tool invocation extracted from a run event stream.
type ToolCall struct {
	Seq      uint64
	ToolName string
	Params   any
}

// ParamDelta is a single parameter-level delta between two tool calls. Key
// uses dot-separated JSON paths for nested object fields; root-level
// non-object changes use ".".
type ParamDelta struct {
	Key    string
	Before any
	After  any
}

// ToolCallChangeKind names the shape of a ToolCallChange.
type ToolCallChangeKind int

const (
	ChangeAdded ToolCallChangeKind = iota
	ChangeRemoved
	ChangeReordered
	ChangeParamChanged
)

// ToolCallChange is one detected change between two tool-call sequences.
type ToolCallChange struct {
	Kind       ToolCallChangeKind
	Call       ToolCall
	FromIndex  int
	ToIndex    int
	ToolName   string
	SeqA, SeqB uint64
	Deltas     []ParamDelta
}

// ToolCallDiff is the result of diffing two tool-call sequences.
type ToolCallDiff struct {
	Changes []ToolCallChange
}

// IsEmpty reports whether the diff carries no changes.
func (d ToolCallDiff) IsEmpty() bool { return len(d.Changes) == 0 }

func extractToolCalls(events []domain.RunEvent) []ToolCall {
	var calls []ToolCall
	for _, e := range events {
		if e.Kind != "tool_called" {
			continue
		}
		payload, ok := e.Payload.(map[string]any)
		if !ok {
			continue
		}
		name, ok := payload["tool_name"].(string)
		if !ok {
			continue
		}
		calls = append(calls, ToolCall{Seq: e.Seq, ToolName: name, Params: e.Payload})
	}
	return calls
}

// lcsAlignment returns index pairs (i, j) aligning callsA[i] with
// callsB[j] by longest common subsequence of tool names.
func lcsAlignment(callsA, callsB []ToolCall) [][2]int {
	m, n := len(callsA), len(callsB)
	if m == 0 || n == 0 {
		return nil
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if callsA[i-1].ToolName == callsB[j-1].ToolName {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i][j-1] > dp[i-1][j] {
				dp[i][j] = dp[i][j-1]
			} else {
				dp[i][j] = dp[i-1][j]
			}
		}
	}

	var alignment [][2]int
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case callsA[i-1].ToolName == callsB[j-1].ToolName:
			alignment = append(alignment, [2]int{i - 1, j - 1})
			i--
			j--
		case dp[i][j-1] > dp[i-1][j]:
			j--
		default:
			i--
		}
	}

	for l, r := 0, len(alignment)-1; l < r; l, r = l+1, r-1 {
		alignment[l], alignment[r] = alignment[r], alignment[l]
	}
	return alignment
}

func paramDeltaRecursive(prefix string, a, b any, out *[]ParamDelta) {
	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)
	if string(aJSON) == string(bJSON) {
		return
	}

	objA, aIsObj := a.(map[string]any)
	objB, bIsObj := b.(map[string]any)
	if aIsObj && bIsObj {
		keys := make(map[string]struct{})
		for k := range objA {
			keys[k] = struct{}{}
		}
		for k := range objB {
			keys[k] = struct{}{}
		}
		sorted := make([]string, 0, len(keys))
		for k := range keys {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)

		for _, key := range sorted {
			childPath := key
			if prefix != "" {
				childPath = fmt.Sprintf("%s.%s", prefix, key)
			}
			paramDeltaRecursive(childPath, objA[key], objB[key], out)
		}
		return
	}

	key := prefix
	if key == "" {
		key = "."
	}
	*out = append(*out, ParamDelta{Key: key, Before: a, After: b})
}

func paramDelta(a, b any) []ParamDelta {
	var deltas []ParamDelta
	paramDeltaRecursive("", a, b, &deltas)
	return deltas
}

// DiffToolCalls diffs two ordered run event streams by tool-call sequence,
// using LCS alignment on tool names to detect added, removed, reordered,
// and parameter-changed calls.
func DiffToolCalls(a, b []domain.RunEvent) ToolCallDiff {
	callsA := extractToolCalls(a)
	callsB := extractToolCalls(b)
	alignment := lcsAlignment(callsA, callsB)

	alignedA := make(map[int]bool, len(alignment))
	alignedB := make(map[int]bool, len(alignment))
	for _, pair := range alignment {
		alignedA[pair[0]] = true
		alignedB[pair[1]] = true
	}

	var changes []ToolCallChange

	for i, call := range callsA {
		if !alignedA[i] {
			changes = append(changes, ToolCallChange{Kind: ChangeRemoved, Call: call})
		}
	}

	for _, pair := range alignment {
		iA, iB := pair[0], pair[1]
		ca, cb := callsA[iA], callsB[iB]

		if deltas := paramDelta(ca.Params, cb.Params); len(deltas) > 0 {
			changes = append(changes, ToolCallChange{
				Kind: ChangeParamChanged, ToolName: ca.ToolName, SeqA: ca.Seq, SeqB: cb.Seq, Deltas: deltas,
			})
		}
		if iA != iB {
			changes = append(changes, ToolCallChange{Kind: ChangeReordered, Call: cb, FromIndex: iA, ToIndex: iB})
		}
	}

	for i, call := range callsB {
		if !alignedB[i] {
			changes = append(changes, ToolCallChange{Kind: ChangeAdded, Call: call})
		}
	}

	return ToolCallDiff{Changes: changes}
}
