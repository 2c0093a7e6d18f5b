package repository

import (
	"context"
	"fmt"
)

// migrate applies the schema on open. Statements are idempotent; the DDL is
// shared between dialects except for the binary and timestamp column types.
func (d *DB) migrate(ctx context.Context) error {
	blob, ts := "BLOB", "TIMESTAMP"
	if d.driver == DriverPostgres {
		blob, ts = "BYTEA", "TIMESTAMPTZ"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			created_at %s NOT NULL
		)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			tx_date TEXT NOT NULL DEFAULT '',
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency TEXT NOT NULL,
			raw_text TEXT NOT NULL DEFAULT '',
			confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			source_path TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL DEFAULT '',
			created_at %s NOT NULL
		)`, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS scan_jobs (
			id TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			status TEXT NOT NULL,
			error_message TEXT,
			record_id TEXT,
			confidence DOUBLE PRECISION,
			created_at %s NOT NULL,
			updated_at %s NOT NULL
		)`, ts, ts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS ingested_files (
			id TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			filename TEXT NOT NULL,
			file_ext TEXT NOT NULL,
			file_size INTEGER NOT NULL DEFAULT 0,
			content_hash %s NOT NULL UNIQUE,
			uploaded_at %s NOT NULL
		)`, blob, ts),
		`CREATE INDEX IF NOT EXISTS idx_records_created_at ON records (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_jobs_status ON scan_jobs (status)`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			d.logger.Error("migration failed", "error", err)
			return err
		}
	}
	d.logger.Debug("schema migrations applied", "statements", len(stmts))
	return nil
}
