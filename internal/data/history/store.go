package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun upserts run and returns its id, generating one when empty.
func (s *Store) SaveRun(run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	finished := ""
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(time.RFC3339Nano)
	}

	query := `
INSERT INTO runs (
  id, project, crate, started_at_utc, finished_at_utc, modules, functions, emitted, skipped, failed
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  finished_at_utc=excluded.finished_at_utc,
  modules=excluded.modules,
  functions=excluded.functions,
  emitted=excluded.emitted,
  skipped=excluded.skipped,
  failed=excluded.failed
`
	err := s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.ID,
			run.Project,
			run.Crate,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			finished,
			run.Modules,
			run.Functions,
			run.Emitted,
			run.Skipped,
			run.Failed,
		)
		return err
	})
	return run.ID, err
}

// SaveContexts stores the per-function summaries of a run in one
// transaction.
func (s *Store) SaveContexts(runID string, rows []Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withRetry("save contexts", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
INSERT OR REPLACE INTO contexts (run_id, function, types, functions, unresolved)
VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.Exec(runID, row.Function, row.Types, row.Functions, row.Unresolved); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadRuns returns the runs of project started at or after since, oldest
// first.
func (s *Store) LoadRuns(project string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT id, project, crate, started_at_utc, finished_at_utc, modules, functions, emitted, skipped, failed
FROM runs
WHERE project = ?`
	args := []any{project}
	if !since.IsZero() {
		query += " AND started_at_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY started_at_utc ASC, id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			startedRaw  string
			finishedRaw string
			run         Run
		)
		if err := rows.Scan(
			&run.ID,
			&run.Project,
			&run.Crate,
			&startedRaw,
			&finishedRaw,
			&run.Modules,
			&run.Functions,
			&run.Emitted,
			&run.Skipped,
			&run.Failed,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		if finishedRaw != "" {
			finished, err := time.Parse(time.RFC3339Nano, finishedRaw)
			if err != nil {
				return nil, fmt.Errorf("parse run timestamp %q: %w", finishedRaw, err)
			}
			run.FinishedAt = finished.UTC()
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LoadContexts returns the summaries of one run ordered by function.
func (s *Store) LoadContexts(runID string) ([]Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load contexts", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT run_id, function, types, functions, unresolved
FROM contexts WHERE run_id = ? ORDER BY function ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Context, 0)
	for rows.Next() {
		var c Context
		if err := rows.Scan(&c.RunID, &c.Function, &c.Types, &c.Functions, &c.Unresolved); err != nil {
			return nil, fmt.Errorf("scan context row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate context rows: %w", err)
	}
	return out, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
