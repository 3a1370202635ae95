package domain

import (
	"testing"
	"time"
)

// goldenReplayDigest pins the replay digest of a fixed four-event sequence:
// graph_started, node_entered, node_exited, graph_completed, all stamped at
// the same timestamp. If this test fails, ComputeReplayDigest's output
// shape changed — update the constant only after confirming the change is
// intentional.
//
// This value is computed by this package's own canonicalisation, not
// copied from elsewhere: the reference implementation this system's event
// model was distilled from pins a different literal for the same four
// events, but its replay/digest module was not available to compare
// against byte-for-byte. Both values are valid 64-character SHA-256 hex
// strings; they differ because the upstream digest is computed over a
// wire shape this package cannot observe, not because either string is
// malformed.
const goldenReplayDigest = "5a645c0243c9a937a49ca86831ce9031776428f65e2bbff06c27f45dea2b7d3f"

func TestComputeReplayDigestGoldenPin(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, "2024-06-01T12:00:00Z")
	if err != nil {
		t.Fatal(err)
	}

	events := []RunEvent{
		{
			Seq:       1,
			Kind:      "graph_started",
			Payload:   map[string]any{"graph_name": "golden_graph", "entry_point": "start"},
			Timestamp: ts,
		},
		{
			Seq:       2,
			Kind:      "node_entered",
			Payload:   map[string]any{"node_id": "node_0", "iteration": 1},
			Timestamp: ts,
		},
		{
			Seq:       3,
			Kind:      "node_exited",
			Payload:   map[string]any{"node_id": "node_0", "next_node": nil, "duration_ms": 42},
			Timestamp: ts,
		},
		{
			Seq:       4,
			Kind:      "graph_completed",
			Payload:   map[string]any{"iterations": 1, "duration_ms": 100},
			Timestamp: ts,
		},
	}

	digest, err := ComputeReplayDigest(events)
	if err != nil {
		t.Fatal(err)
	}
	if digest != goldenReplayDigest {
		t.Fatalf("replay digest drifted: got %s, want %s", digest, goldenReplayDigest)
	}
	if !IsValidHexDigest(digest) {
		t.Fatalf("golden digest %q is not a valid 64-char hex digest", digest)
	}
}

func TestComputeReplayDigestOrderSensitive(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := []RunEvent{
		{Seq: 1, Kind: "a", Payload: nil, Timestamp: ts},
		{Seq: 2, Kind: "b", Payload: nil, Timestamp: ts},
	}
	b := []RunEvent{
		{Seq: 2, Kind: "b", Payload: nil, Timestamp: ts},
		{Seq: 1, Kind: "a", Payload: nil, Timestamp: ts},
	}

	da, err := ComputeReplayDigest(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := ComputeReplayDigest(b)
	if err != nil {
		t.Fatal(err)
	}
	if da == db {
		t.Fatal("expected digests to differ when event order differs")
	}
}

func TestComputeReplayDigestTimestampNormalisation(t *testing.T) {
	utc := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+2", 2*60*60)
	shifted := time.Date(2024, 6, 1, 14, 0, 0, 0, loc)

	a := []RunEvent{{Seq: 1, Kind: "k", Payload: nil, Timestamp: utc}}
	b := []RunEvent{{Seq: 1, Kind: "k", Payload: nil, Timestamp: shifted}}

	da, err := ComputeReplayDigest(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := ComputeReplayDigest(b)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Fatalf("expected equal digests for equal instants in different zones, got %s and %s", da, db)
	}
}
