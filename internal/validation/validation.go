// Package validation implements the known-event-kind whitelist and
// required-payload-field checks that every RunEvent must pass before the
// run ledger will persist it.
package validation

import (
	"github.com/marcus-qen/aivcs/internal/domain"
)

// KnownEventKinds are the structured event kinds produced by a graph-engine
// adapter. Events whose kind starts with "Custom:" bypass this whitelist
// entirely — their schema is caller-defined.
var KnownEventKinds = map[string]bool{
	"graph_started":       true,
	"graph_completed":     true,
	"graph_failed":        true,
	"graph_interrupted":   true,
	"node_entered":        true,
	"node_exited":         true,
	"node_failed":         true,
	"node_retrying":       true,
	"tool_called":         true,
	"tool_returned":       true,
	"tool_failed":         true,
	"checkpoint_saved":    true,
	"checkpoint_restored": true,
	"checkpoint_deleted":  true,
	"state_updated":       true,
	"message_added":       true,
	"decision_made":       true,
	"decision_outcome":    true,
}

// requiredPayloadFields lists the payload fields a structured event kind
// must carry. Kinds not listed here require no specific fields. This
// table is versioned together with the event taxonomy.
var requiredPayloadFields = map[string][]string{
	"graph_started":       {"graph_name", "entry_point"},
	"graph_completed":     {"iterations", "duration_ms"},
	"graph_failed":        {"error"},
	"graph_interrupted":   {"reason", "node_id"},
	"node_entered":        {"node_id", "iteration"},
	"node_exited":         {"node_id"},
	"node_failed":         {"node_id", "error"},
	"node_retrying":       {"node_id", "attempt"},
	"tool_called":         {"tool_name"},
	"tool_returned":       {"tool_name"},
	"tool_failed":         {"tool_name"},
	"checkpoint_saved":    {"checkpoint_id", "node_id"},
	"checkpoint_restored": {"checkpoint_id", "node_id"},
	"checkpoint_deleted":  {"checkpoint_id"},
	"state_updated":       {"node_id"},
	"message_added":       {"role"},
	"decision_made":       {"decision_id", "confidence"},
	"decision_outcome":    {"decision_id", "success"},
}

const customPrefix = "Custom:"

// ValidateRunEvent checks, in order: kind is non-empty; Custom:-prefixed
// kinds bypass field validation; unknown non-custom kinds are rejected;
// required payload fields for known kinds must be present.
func ValidateRunEvent(event domain.RunEvent) error {
	if event.Kind == "" {
		return &domain.EmptyKindError{}
	}

	if hasPrefix(event.Kind, customPrefix) {
		return nil
	}

	if !KnownEventKinds[event.Kind] {
		return &domain.UnknownEventKindError{Kind: event.Kind}
	}

	required, ok := requiredPayloadFields[event.Kind]
	if !ok {
		return nil
	}

	payload, _ := event.Payload.(map[string]any)
	for _, field := range required {
		if payload == nil {
			return &domain.MissingPayloadFieldError{Kind: event.Kind, Field: field}
		}
		if _, present := payload[field]; !present {
			return &domain.MissingPayloadFieldError{Kind: event.Kind, Field: field}
		}
	}

	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
