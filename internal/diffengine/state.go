package diffengine

import (
	"encoding/json"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/marcus-qen/aivcs/internal/domain"
)

// CheckpointSavedKind is the event kind emitted when a checkpoint is saved.
const CheckpointSavedKind = "checkpoint_saved"

// StateDelta is a single delta at an RFC 6901 JSON pointer path between
// two states.
type StateDelta struct {
	Pointer string
	Before  any
	After   any
}

// ScopedStateDiff is the result of diffing two states at scoped JSON
// pointer paths.
type ScopedStateDiff struct {
	Deltas []StateDelta
	// MergePatch is the full RFC 7396 merge patch from Before to After,
	// computed independently of the requested pointer scope — a coarser,
	// whole-document view useful for audit artifacts.
	MergePatch json.RawMessage
}

// IsEmpty reports whether the diff carries no scoped deltas.
func (d ScopedStateDiff) IsEmpty() bool { return len(d.Deltas) == 0 }

// resolvePointer resolves an RFC 6901 JSON pointer against v, returning
// nil if any segment is absent.
func resolvePointer(v any, pointer string) any {
	if pointer == "" {
		return v
	}
	segments := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	current := v
	for _, seg := range segments {
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")

		switch node := current.(type) {
		case map[string]any:
			val, ok := node[seg]
			if !ok {
				return nil
			}
			current = val
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil
			}
			current = node[idx]
		default:
			return nil
		}
	}
	return current
}

// ExtractLastCheckpoint returns the payload of the last checkpoint_saved
// event in the stream, or nil if there is none.
func ExtractLastCheckpoint(events []domain.RunEvent) any {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == CheckpointSavedKind {
			return events[i].Payload
		}
	}
	return nil
}

// DiffScopedState diffs a and b at each of pointers, resolving each
// pointer independently against both states. Pointers where both sides
// resolve to the same (or absent) value are skipped.
func DiffScopedState(a, b any, pointers []string) ScopedStateDiff {
	var deltas []StateDelta
	for _, ptr := range pointers {
		valA := resolvePointer(a, ptr)
		valB := resolvePointer(b, ptr)

		aJSON, _ := json.Marshal(valA)
		bJSON, _ := json.Marshal(valB)
		if string(aJSON) == string(bJSON) {
			continue
		}
		deltas = append(deltas, StateDelta{Pointer: ptr, Before: valA, After: valB})
	}

	return ScopedStateDiff{Deltas: deltas, MergePatch: mergePatch(a, b)}
}

// mergePatch computes the RFC 7396 merge patch from a to b, or nil if
// either side fails to marshal.
func mergePatch(a, b any) json.RawMessage {
	aJSON, errA := json.Marshal(a)
	bJSON, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return nil
	}
	patch, err := jsonpatch.CreateMergePatch(aJSON, bJSON)
	if err != nil {
		return nil
	}
	return patch
}

// DiffRunStates extracts the last checkpoint state from two event streams
// and diffs them at the given JSON pointer paths. A stream with no
// checkpoint events contributes a null state, so the diff is empty only
// when neither stream has one (or the pointers resolve equally).
func DiffRunStates(a, b []domain.RunEvent, pointers []string) ScopedStateDiff {
	stateA := ExtractLastCheckpoint(a)
	stateB := ExtractLastCheckpoint(b)
	return DiffScopedState(stateA, stateB, pointers)
}
