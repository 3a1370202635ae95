package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/metrics"
	"github.com/marcus-qen/aivcs/internal/storage"
	"github.com/marcus-qen/aivcs/internal/telemetry"
	"github.com/marcus-qen/aivcs/internal/validation"
)

type runRecord struct {
	run    domain.Run
	events []domain.RunEvent
}

// Ledger is an in-memory RunLedger. A single mutex serialises all
// operations; the per-run ordering invariant is enforced at the point of
// append regardless of caller concurrency.
type Ledger struct {
	mu   sync.Mutex
	runs map[domain.RunID]*runRecord
}

// NewLedger creates an empty in-memory run ledger.
func NewLedger() *Ledger {
	return &Ledger{runs: make(map[domain.RunID]*runRecord)}
}

func (l *Ledger) CreateRun(_ context.Context, specDigest string, meta domain.RunMetadata) (domain.RunID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := domain.RunID(uuid.New().String())
	l.runs[id] = &runRecord{
		run: domain.Run{
			RunID:      id,
			SpecDigest: specDigest,
			GitSHA:     meta.GitSHA,
			AgentName:  meta.AgentName,
			Tags:       meta.Tags,
			Status:     domain.RunRunning,
			StartedAt:  time.Now().UTC(),
		},
	}
	return id, nil
}

func (l *Ledger) AppendEvent(ctx context.Context, runID domain.RunID, event domain.RunEvent) error {
	_, span := telemetry.StartLedgerAppendSpan(ctx, string(runID), event.Kind, event.Seq)
	defer span.End()

	if err := validation.ValidateRunEvent(event); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.runs[runID]
	if !ok {
		return &domain.RunNotFoundError{RunID: string(runID)}
	}
	if rec.run.Status.IsTerminal() {
		return &domain.RunTerminalError{Status: string(rec.run.Status)}
	}

	expected := uint64(len(rec.events) + 1)
	if event.Seq != expected {
		for _, existing := range rec.events {
			if existing.Seq == event.Seq {
				return &domain.DuplicateSeqError{RunID: string(runID), Seq: event.Seq}
			}
		}
		return &domain.OutOfOrderError{Expected: expected, Got: event.Seq}
	}

	rec.events = append(rec.events, event)
	metrics.RecordEventAppended(event.Kind)
	return nil
}

func (l *Ledger) complete(runID domain.RunID, status domain.RunStatus, summary domain.RunSummary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.runs[runID]
	if !ok {
		return &domain.RunNotFoundError{RunID: string(runID)}
	}
	if rec.run.Status.IsTerminal() {
		return &domain.RunTerminalError{Status: string(rec.run.Status)}
	}

	now := time.Now().UTC()
	summaryCopy := summary
	rec.run.Status = status
	rec.run.FinishedAt = &now
	rec.run.Summary = &summaryCopy
	return nil
}

func (l *Ledger) CompleteRun(_ context.Context, runID domain.RunID, summary domain.RunSummary) error {
	return l.complete(runID, domain.RunCompleted, summary)
}

func (l *Ledger) FailRun(_ context.Context, runID domain.RunID, summary domain.RunSummary) error {
	return l.complete(runID, domain.RunFailed, summary)
}

func (l *Ledger) CancelRun(_ context.Context, runID domain.RunID, summary domain.RunSummary) error {
	return l.complete(runID, domain.RunCancelled, summary)
}

func (l *Ledger) GetRun(_ context.Context, runID domain.RunID) (*domain.Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.runs[runID]
	if !ok {
		return nil, &domain.RunNotFoundError{RunID: string(runID)}
	}
	run := rec.run
	return &run, nil
}

func (l *Ledger) GetEvents(_ context.Context, runID domain.RunID) ([]domain.RunEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.runs[runID]
	if !ok {
		return nil, &domain.RunNotFoundError{RunID: string(runID)}
	}
	out := make([]domain.RunEvent, len(rec.events))
	copy(out, rec.events)
	return out, nil
}

func (l *Ledger) ListRuns(_ context.Context, specDigest string) ([]domain.Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.Run
	for _, rec := range l.runs {
		if specDigest != "" && rec.run.SpecDigest != specDigest {
			continue
		}
		out = append(out, rec.run)
	}
	// newest-first by creation time
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].StartedAt.After(out[j-1].StartedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

var _ storage.RunLedger = (*Ledger)(nil)
