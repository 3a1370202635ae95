// Package storage defines the trait-level storage contracts consumed from
// the surrounding ecosystem: a content-addressed blob store, an
// event-sourced run ledger, and an append-only release registry. Keeping
// these as interfaces lets in-memory fakes (for tests) and durable
// backends (SQLite, MySQL) coexist behind the same call sites.
package storage

import (
	"context"

	"github.com/marcus-qen/aivcs/internal/domain"
)

// CasStore is a content-addressed blob store.
type CasStore interface {
	// Put stores b and returns its digest. Storing a blob already present
	// is a no-op write-wise; the returned digest is identical for
	// identical bytes.
	Put(ctx context.Context, b []byte) (domain.Digest, error)
	// Get retrieves the blob for digest, or a NotFoundError if absent.
	Get(ctx context.Context, digest domain.Digest) ([]byte, error)
	// Exists reports whether digest is present.
	Exists(ctx context.Context, digest domain.Digest) (bool, error)
}

// NotFoundError reports a CasStore.Get miss.
type NotFoundError struct {
	Digest domain.Digest
}

func (e *NotFoundError) Error() string {
	return "blob not found: " + e.Digest.String()
}

// RunLedger is the append-only, event-sourced store of run lifecycles.
type RunLedger interface {
	CreateRun(ctx context.Context, specDigest string, meta domain.RunMetadata) (domain.RunID, error)
	AppendEvent(ctx context.Context, runID domain.RunID, event domain.RunEvent) error
	CompleteRun(ctx context.Context, runID domain.RunID, summary domain.RunSummary) error
	FailRun(ctx context.Context, runID domain.RunID, summary domain.RunSummary) error
	CancelRun(ctx context.Context, runID domain.RunID, summary domain.RunSummary) error
	GetRun(ctx context.Context, runID domain.RunID) (*domain.Run, error)
	GetEvents(ctx context.Context, runID domain.RunID) ([]domain.RunEvent, error)
	ListRuns(ctx context.Context, specDigest string) ([]domain.Run, error)
}

// ReleaseRegistry is the append-only promotion history per agent name.
type ReleaseRegistry interface {
	Promote(ctx context.Context, agentName, specDigest string, meta domain.Release) (domain.Release, error)
	Current(ctx context.Context, agentName string) (*domain.Release, error)
	History(ctx context.Context, agentName string) ([]domain.Release, error)
	Rollback(ctx context.Context, agentName string) (domain.Release, error)
}
