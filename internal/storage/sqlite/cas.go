// Package sqlite implements the CasStore, RunLedger, and ReleaseRegistry
// contracts of package storage on top of a single embedded SQLite file via
// modernc.org/sqlite (pure Go, no cgo). Schema and connection setup follow
// the teacher's policy-store idiom: WAL journal mode, create-table-if-not-
// exists, JSON-encoded composite columns.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage"
)

// Open opens (or creates) the SQLite database at dbPath, enables WAL mode,
// and ensures all tables used by CasStore/RunLedger/ReleaseRegistry exist.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open aivcs db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return db, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS cas_blobs (
		digest TEXT PRIMARY KEY,
		data   BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		run_id        TEXT PRIMARY KEY,
		spec_digest   TEXT NOT NULL,
		git_sha       TEXT NOT NULL DEFAULT '',
		agent_name    TEXT NOT NULL,
		tags          TEXT NOT NULL DEFAULT 'null',
		status        TEXT NOT NULL,
		started_at    TEXT NOT NULL,
		finished_at   TEXT,
		summary       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS run_events (
		run_id    TEXT NOT NULL,
		seq       INTEGER NOT NULL,
		kind      TEXT NOT NULL,
		payload   TEXT NOT NULL,
		ts        TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS releases (
		agent_name    TEXT NOT NULL,
		spec_digest   TEXT NOT NULL,
		version_label TEXT NOT NULL DEFAULT '',
		promoted_by   TEXT NOT NULL,
		notes         TEXT NOT NULL DEFAULT '',
		environment   TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		seq           INTEGER
	)`,
}

// CasStore is the SQLite-backed blob store: rows keyed by hex digest.
type CasStore struct {
	db *sql.DB
}

// NewCasStore wraps db as a CasStore. db must already have had Open's
// schema applied (typically by sharing the same *sql.DB as Ledger/Registry).
func NewCasStore(db *sql.DB) *CasStore { return &CasStore{db: db} }

func (c *CasStore) Put(ctx context.Context, b []byte) (domain.Digest, error) {
	digest := domain.Compute(b)
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cas_blobs (digest, data) VALUES (?, ?) ON CONFLICT(digest) DO NOTHING`,
		digest.String(), b)
	if err != nil {
		return domain.Digest{}, fmt.Errorf("put blob: %w", err)
	}
	return digest, nil
}

func (c *CasStore) Get(ctx context.Context, digest domain.Digest) ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, `SELECT data FROM cas_blobs WHERE digest = ?`, digest.String()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, &storage.NotFoundError{Digest: digest}
	}
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return data, nil
}

func (c *CasStore) Exists(ctx context.Context, digest domain.Digest) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, `SELECT 1 FROM cas_blobs WHERE digest = ?`, digest.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check blob existence: %w", err)
	}
	return true, nil
}

var _ storage.CasStore = (*CasStore)(nil)
