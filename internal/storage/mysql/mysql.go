// Package mysql implements the CasStore, RunLedger, and ReleaseRegistry
// contracts of package storage against MySQL/MariaDB via
// github.com/go-sql-driver/mysql, exercising a second SQL dialect
// alongside internal/storage/sqlite behind the same trait-level
// interfaces.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage"
)

// Open connects to dsn (a go-sql-driver/mysql DSN, e.g.
// "user:pass@tcp(host:3306)/aivcs?parseTime=true") and ensures the schema
// used by CasStore/Ledger/Registry exists.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open aivcs mysql db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping aivcs mysql db: %w", err)
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
		digest VARCHAR(64) PRIMARY KEY,
		data   LONGBLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		run_id        VARCHAR(64) PRIMARY KEY,
		spec_digest   VARCHAR(64) NOT NULL,
		git_sha       VARCHAR(64) NOT NULL DEFAULT '',
		agent_name    VARCHAR(255) NOT NULL,
		tags          TEXT NOT NULL,
		status        VARCHAR(16) NOT NULL,
		started_at    VARCHAR(40) NOT NULL,
		finished_at   VARCHAR(40),
		summary       TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS run_events (
		run_id    VARCHAR(64) NOT NULL,
		seq       BIGINT UNSIGNED NOT NULL,
		kind      VARCHAR(64) NOT NULL,
		payload   TEXT NOT NULL,
		ts        VARCHAR(40) NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS releases (
		seq           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		agent_name    VARCHAR(255) NOT NULL,
		spec_digest   VARCHAR(64) NOT NULL,
		version_label VARCHAR(64) NOT NULL DEFAULT '',
		promoted_by   VARCHAR(255) NOT NULL,
		notes         TEXT,
		environment   VARCHAR(16) NOT NULL DEFAULT '',
		created_at    VARCHAR(40) NOT NULL
	)`,
}

// CasStore is the MySQL-backed blob store.
type CasStore struct {
	db *sql.DB
}

// NewCasStore wraps db (already schema-applied by Open) as a CasStore.
func NewCasStore(db *sql.DB) *CasStore { return &CasStore{db: db} }

func (c *CasStore) Put(ctx context.Context, b []byte) (domain.Digest, error) {
	digest := domain.Compute(b)
	_, err := c.db.ExecContext(ctx,
		`INSERT IGNORE INTO cas_blobs (digest, data) VALUES (?, ?)`, digest.String(), b)
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
