package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/metrics"
	"github.com/marcus-qen/aivcs/internal/storage"
	"github.com/marcus-qen/aivcs/internal/telemetry"
	"github.com/marcus-qen/aivcs/internal/validation"
)

// Ledger is the SQLite-backed RunLedger. Every method round-trips through
// the database so ordering and terminal-state invariants are enforced
// against the durable row, not an in-memory mirror.
type Ledger struct {
	db *sql.DB
}

// NewLedger wraps db as a RunLedger.
func NewLedger(db *sql.DB) *Ledger { return &Ledger{db: db} }

func (l *Ledger) CreateRun(ctx context.Context, specDigest string, meta domain.RunMetadata) (domain.RunID, error) {
	id := domain.RunID(uuid.New().String())
	tags, err := json.Marshal(meta.Tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, spec_digest, git_sha, agent_name, tags, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(id), specDigest, meta.GitSHA, meta.AgentName, string(tags), string(domain.RunRunning), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

func (l *Ledger) AppendEvent(ctx context.Context, runID domain.RunID, event domain.RunEvent) error {
	ctx, span := telemetry.StartLedgerAppendSpan(ctx, string(runID), event.Kind, event.Seq)
	defer span.End()

	if err := validation.ValidateRunEvent(event); err != nil {
		return err
	}

	status, err := l.runStatus(ctx, runID)
	if err != nil {
		return err
	}
	if status.IsTerminal() {
		return &domain.RunTerminalError{Status: string(status)}
	}

	var count uint64
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_events WHERE run_id = ?`, string(runID)).Scan(&count); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	expected := count + 1
	if event.Seq != expected {
		var exists int
		err := l.db.QueryRowContext(ctx, `SELECT 1 FROM run_events WHERE run_id = ? AND seq = ?`, string(runID), event.Seq).Scan(&exists)
		if err == nil {
			return &domain.DuplicateSeqError{RunID: string(runID), Seq: event.Seq}
		}
		return &domain.OutOfOrderError{Expected: expected, Got: event.Seq}
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`INSERT INTO run_events (run_id, seq, kind, payload, ts) VALUES (?, ?, ?, ?, ?)`,
		string(runID), event.Seq, event.Kind, string(payload), event.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	metrics.RecordEventAppended(event.Kind)
	return nil
}

func (l *Ledger) runStatus(ctx context.Context, runID domain.RunID) (domain.RunStatus, error) {
	var status string
	err := l.db.QueryRowContext(ctx, `SELECT status FROM runs WHERE run_id = ?`, string(runID)).Scan(&status)
	if err == sql.ErrNoRows {
		return "", &domain.RunNotFoundError{RunID: string(runID)}
	}
	if err != nil {
		return "", fmt.Errorf("lookup run status: %w", err)
	}
	return domain.RunStatus(status), nil
}

func (l *Ledger) complete(ctx context.Context, runID domain.RunID, status domain.RunStatus, summary domain.RunSummary) error {
	current, err := l.runStatus(ctx, runID)
	if err != nil {
		return err
	}
	if current.IsTerminal() {
		return &domain.RunTerminalError{Status: string(current)}
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, summary = ? WHERE run_id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339Nano), string(summaryJSON), string(runID))
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

func (l *Ledger) CompleteRun(ctx context.Context, runID domain.RunID, summary domain.RunSummary) error {
	return l.complete(ctx, runID, domain.RunCompleted, summary)
}

func (l *Ledger) FailRun(ctx context.Context, runID domain.RunID, summary domain.RunSummary) error {
	return l.complete(ctx, runID, domain.RunFailed, summary)
}

func (l *Ledger) CancelRun(ctx context.Context, runID domain.RunID, summary domain.RunSummary) error {
	return l.complete(ctx, runID, domain.RunCancelled, summary)
}

func (l *Ledger) GetRun(ctx context.Context, runID domain.RunID) (*domain.Run, error) {
	var run domain.Run
	var tags, summary sql.NullString
	var finishedAt sql.NullString
	var startedAt, status string

	run.RunID = runID
	err := l.db.QueryRowContext(ctx,
		`SELECT spec_digest, git_sha, agent_name, tags, status, started_at, finished_at, summary FROM runs WHERE run_id = ?`,
		string(runID)).Scan(&run.SpecDigest, &run.GitSHA, &run.AgentName, &tags, &status, &startedAt, &finishedAt, &summary)
	if err == sql.ErrNoRows {
		return nil, &domain.RunNotFoundError{RunID: string(runID)}
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if tags.Valid {
		if err := json.Unmarshal([]byte(tags.String), &run.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	run.Status = domain.RunStatus(status)
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &t
	}
	if summary.Valid {
		var s domain.RunSummary
		if err := json.Unmarshal([]byte(summary.String), &s); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		run.Summary = &s
	}
	return &run, nil
}

func (l *Ledger) GetEvents(ctx context.Context, runID domain.RunID) ([]domain.RunEvent, error) {
	if _, err := l.runStatus(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, kind, payload, ts FROM run_events WHERE run_id = ? ORDER BY seq ASC`, string(runID))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.RunEvent
	for rows.Next() {
		var ev domain.RunEvent
		var payload, ts string
		if err := rows.Scan(&ev.Seq, &ev.Kind, &payload, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		if ev.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse event ts: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (l *Ledger) ListRuns(ctx context.Context, specDigest string) ([]domain.Run, error) {
	query := `SELECT run_id FROM runs`
	args := []any{}
	if specDigest != "" {
		query += ` WHERE spec_digest = ?`
		args = append(args, specDigest)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Run, 0, len(ids))
	for _, id := range ids {
		run, err := l.GetRun(ctx, domain.RunID(id))
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, nil
}

var _ storage.RunLedger = (*Ledger)(nil)
