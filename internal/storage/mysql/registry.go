package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage"
)

// Registry is the MySQL-backed ReleaseRegistry: an append-only table of
// promotions ordered by an AUTO_INCREMENT seq column.
type Registry struct {
	db *sql.DB
}

func NewRegistry(db *sql.DB) *Registry { return &Registry{db: db} }

func (r *Registry) Promote(ctx context.Context, agentName, specDigest string, meta domain.Release) (domain.Release, error) {
	if !domain.IsValidHexDigest(specDigest) {
		return domain.Release{}, &domain.InvalidDigestError{Hex: specDigest}
	}

	rec := meta
	rec.AgentName = agentName
	rec.SpecDigest = specDigest
	rec.CreatedAt = time.Now().UTC()

	if err := r.insert(ctx, rec); err != nil {
		return domain.Release{}, err
	}
	return rec, nil
}

func (r *Registry) insert(ctx context.Context, rec domain.Release) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO releases (agent_name, spec_digest, version_label, promoted_by, notes, environment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.AgentName, rec.SpecDigest, rec.VersionLabel, rec.PromotedBy, rec.Notes, string(rec.Environment), rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert release: %w", err)
	}
	return nil
}

func (r *Registry) Current(ctx context.Context, agentName string) (*domain.Release, error) {
	history, err := r.History(ctx, agentName)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[len(history)-1]
	return &latest, nil
}

func (r *Registry) History(ctx context.Context, agentName string) ([]domain.Release, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT spec_digest, version_label, promoted_by, notes, environment, created_at
		 FROM releases WHERE agent_name = ? ORDER BY seq ASC`, agentName)
	if err != nil {
		return nil, fmt.Errorf("query release history: %w", err)
	}
	defer rows.Close()

	var history []domain.Release
	for rows.Next() {
		var rec domain.Release
		var notes sql.NullString
		var environment, createdAt string
		if err := rows.Scan(&rec.SpecDigest, &rec.VersionLabel, &rec.PromotedBy, &notes, &environment, &createdAt); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		rec.Notes = notes.String
		rec.AgentName = agentName
		rec.Environment = domain.ReleaseEnvironment(environment)
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse release created_at: %w", err)
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}

func (r *Registry) Rollback(ctx context.Context, agentName string) (domain.Release, error) {
	history, err := r.History(ctx, agentName)
	if err != nil {
		return domain.Release{}, err
	}
	if len(history) == 0 {
		return domain.Release{}, &domain.ReleaseNotFoundError{Agent: agentName}
	}
	if len(history) < 2 {
		return domain.Release{}, &domain.NoPreviousReleaseError{Agent: agentName}
	}

	previous := history[len(history)-2]
	reappended := domain.Release{
		AgentName:    agentName,
		SpecDigest:   previous.SpecDigest,
		VersionLabel: previous.VersionLabel,
		PromotedBy:   previous.PromotedBy,
		Notes:        previous.Notes,
		Environment:  previous.Environment,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.insert(ctx, reappended); err != nil {
		return domain.Release{}, err
	}
	return reappended, nil
}

var _ storage.ReleaseRegistry = (*Registry)(nil)
