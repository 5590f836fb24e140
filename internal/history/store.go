// Package history keeps a sqlite ledger of generation runs and validation
// outcomes, replacing an append-only failure log with something queryable.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"testforge/internal/validator"
)

// Attempt is one recorded generation attempt.
type Attempt struct {
	RunID      string
	Target     string
	IsValid    bool
	Findings   []validator.Finding
	OutputPath string
	CreatedAt  time.Time
}

// Store wraps the history database. Safe for use from a single process;
// sqlite serializes concurrent writers itself.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a generation run and returns its id.
func (s *Store) BeginRun(sourceFile, testType string) (string, error) {
	runID := uuid.NewString()
	_, err := squirrel.Insert("runs").
		Columns("run_id", "source_file", "test_type", "started_at").
		Values(runID, sourceFile, testType, time.Now().UTC()).
		RunWith(s.db).Exec()
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return runID, nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(runID string) error {
	_, err := squirrel.Update("runs").
		Set("finished_at", time.Now().UTC()).
		Where(squirrel.Eq{"run_id": runID}).
		RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecordAttempt stores one target's verdict. outputPath is empty when the
// candidate was discarded.
func (s *Store) RecordAttempt(runID, target string, verdict validator.Verdict, outputPath string) error {
	findings, err := json.Marshal(verdict.Findings)
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}

	_, err = squirrel.Insert("attempts").
		Columns("run_id", "target", "is_valid", "findings", "output_path", "created_at").
		Values(runID, target, verdict.IsValid, string(findings), outputPath, time.Now().UTC()).
		RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Attempts returns every attempt of a run in insertion order.
func (s *Store) Attempts(runID string) ([]Attempt, error) {
	return s.queryAttempts(squirrel.Eq{"run_id": runID})
}

// FailedAttempts returns the most recent invalid attempts across all runs,
// newest first, capped at limit.
func (s *Store) FailedAttempts(limit uint64) ([]Attempt, error) {
	query := squirrel.Select("run_id", "target", "is_valid", "findings", "output_path", "created_at").
		From("attempts").
		Where(squirrel.Eq{"is_valid": false}).
		OrderBy("attempt_id DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Question)

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query failed attempts: %w", err)
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func (s *Store) queryAttempts(where any) ([]Attempt, error) {
	query := squirrel.Select("run_id", "target", "is_valid", "findings", "output_path", "created_at").
		From("attempts").
		Where(where).
		OrderBy("attempt_id").
		PlaceholderFormat(squirrel.Question)

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]Attempt, error) {
	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var findings string
		if err := rows.Scan(&a.RunID, &a.Target, &a.IsValid, &findings, &a.OutputPath, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		if err := json.Unmarshal([]byte(findings), &a.Findings); err != nil {
			return nil, fmt.Errorf("failed to decode findings: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
