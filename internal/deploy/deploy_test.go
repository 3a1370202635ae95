package deploy

import (
	"context"
	"testing"
	"time"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage/memstore"
)

func TestByDigestRejectsMissingRelease(t *testing.T) {
	ctx := context.Background()
	ledger := memstore.NewLedger()
	registry := memstore.NewRegistry()

	_, err := ByDigest(ctx, registry, ledger, "unknown-agent", nil, time.Time{})
	if _, ok := err.(*domain.ReleaseConflictError); !ok {
		t.Fatalf("expected ReleaseConflictError, got %v", err)
	}
}

func TestByDigestProducesGoldenEqualReplays(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	specDigest := domain.Compute([]byte("agent-spec-v1")).String()

	registryA := memstore.NewRegistry()
	ledgerA := memstore.NewLedger()
	registryA.Promote(ctx, "agent-a", specDigest, domain.Release{})

	registryB := memstore.NewRegistry()
	ledgerB := memstore.NewLedger()
	registryB.Promote(ctx, "agent-a", specDigest, domain.Release{})

	inputs := map[string]any{"prompt": "hello"}
	resultA, err := ByDigest(ctx, registryA, ledgerA, "agent-a", inputs, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resultB, err := ByDigest(ctx, registryB, ledgerB, "agent-a", inputs, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resultA.Summary.ReplayDigest != resultB.Summary.ReplayDigest {
		t.Fatalf("expected golden-equal replay digests, got %s != %s", resultA.Summary.ReplayDigest, resultB.Summary.ReplayDigest)
	}
	if resultA.SpecDigest != specDigest {
		t.Fatalf("expected spec digest %s, got %s", specDigest, resultA.SpecDigest)
	}
}

func TestByDigestDifferentInputsProduceDifferentDigests(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	specDigest := domain.Compute([]byte("agent-spec-v1")).String()

	registry := memstore.NewRegistry()
	ledgerHello := memstore.NewLedger()
	ledgerWorld := memstore.NewLedger()
	registry.Promote(ctx, "agent-a", specDigest, domain.Release{})

	resultHello, err := ByDigest(ctx, registry, ledgerHello, "agent-a", map[string]any{"prompt": "hello"}, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resultWorld, err := ByDigest(ctx, registry, ledgerWorld, "agent-a", map[string]any{"prompt": "world"}, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resultHello.Summary.ReplayDigest == resultWorld.Summary.ReplayDigest {
		t.Fatal("expected different inputs to produce different replay digests")
	}
}
