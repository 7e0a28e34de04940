package history

import (
	"database/sql"
	"fmt"
)

const SchemaVersion = 2

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  project TEXT NOT NULL,
  crate TEXT NOT NULL,
  started_at_utc TEXT NOT NULL,
  finished_at_utc TEXT NOT NULL DEFAULT '',
  modules INTEGER NOT NULL DEFAULT 0,
  functions INTEGER NOT NULL DEFAULT 0,
  emitted INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  created_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at_utc);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE runs ADD COLUMN failed INTEGER NOT NULL DEFAULT 0;
CREATE TABLE IF NOT EXISTS contexts (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  function TEXT NOT NULL,
  types INTEGER NOT NULL,
  functions INTEGER NOT NULL,
  unresolved INTEGER NOT NULL,
  PRIMARY KEY (run_id, function)
);
CREATE INDEX IF NOT EXISTS idx_contexts_function ON contexts(function);
`,
	},
}

// EnsureSchema brings db up to SchemaVersion, one transaction per
// migration. A database written by a newer build is refused.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("history schema %d is newer than supported %d", current, SchemaVersion)
	}
	for _, m := range migrations {
		if m.version > current {
			if err := applyMigration(db, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func applyMigration(db *sql.DB, m migration) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(m.sql); err != nil {
		return fmt.Errorf("apply migration %d: %w", m.version, err)
	}
	if _, err = tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.version, err)
	}
	return nil
}
