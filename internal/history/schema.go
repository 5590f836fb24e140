package history

import (
	"database/sql"
	"fmt"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	source_file TEXT NOT NULL,
	test_type   TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
)`

const createAttemptsTable = `
CREATE TABLE IF NOT EXISTS attempts (
	attempt_id  INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	target      TEXT NOT NULL,
	is_valid    INTEGER NOT NULL,
	findings    TEXT NOT NULL,
	output_path TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL
)`

const createAttemptsRunIndex = `
CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id)`

// createSchema creates all tables and indexes inside one transaction.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	for _, ddl := range []string{createRunsTable, createAttemptsTable, createAttemptsRunIndex} {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create history schema: %w", err)
		}
	}

	return tx.Commit()
}
