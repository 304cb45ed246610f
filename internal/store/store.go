// Package store implements devorch's persistence layer on SQLite.
//
// Projects and journeys are ordinary rows; proposed journeys are NOT —
// each parent record carries its proposal list as a single JSON array
// column that is always rewritten whole (see internal/proposal). Journey
// names and descriptions are mirrored into an FTS5 table for search.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Config holds store configuration.
type Config struct {
	DataDir string
}

// Store is the persistence engine backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a new Store with the given configuration.
// It creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "devorch.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS projects (
			id                 TEXT PRIMARY KEY,
			name               TEXT NOT NULL,
			root_path          TEXT NOT NULL,
			frontend_path      TEXT NOT NULL DEFAULT '',
			backend_path       TEXT NOT NULL DEFAULT '',
			frontend_start_cmd TEXT NOT NULL DEFAULT '',
			backend_start_cmd  TEXT NOT NULL DEFAULT '',
			raw_intake         TEXT NOT NULL DEFAULT '',
			refined_intake     TEXT NOT NULL DEFAULT '',
			proposed_journeys  TEXT NOT NULL DEFAULT '[]',
			created_at         TEXT NOT NULL,
			updated_at         TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS journeys (
			id                TEXT PRIMARY KEY,
			project_id        TEXT NOT NULL,
			name              TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			type              TEXT NOT NULL,
			stage             TEXT NOT NULL,
			status            TEXT NOT NULL,
			branch_name       TEXT NOT NULL DEFAULT '',
			worktree_path     TEXT NOT NULL DEFAULT '',
			parent_journey_id TEXT NOT NULL DEFAULT '',
			tags              TEXT NOT NULL DEFAULT '[]',
			source_url        TEXT NOT NULL DEFAULT '',
			sort_order        INTEGER NOT NULL DEFAULT 0,
			proposed_children TEXT NOT NULL DEFAULT '[]',
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE INDEX IF NOT EXISTS idx_journeys_project ON journeys(project_id);
		CREATE INDEX IF NOT EXISTS idx_journeys_parent  ON journeys(parent_journey_id);
		CREATE INDEX IF NOT EXISTS idx_journeys_order   ON journeys(sort_order, created_at DESC);

		CREATE TABLE IF NOT EXISTS journey_intakes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			journey_id TEXT    NOT NULL,
			version    INTEGER NOT NULL,
			raw        TEXT    NOT NULL DEFAULT '',
			refined    TEXT    NOT NULL DEFAULT '',
			created_at TEXT    NOT NULL,
			FOREIGN KEY (journey_id) REFERENCES journeys(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS journey_specs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			journey_id TEXT    NOT NULL,
			version    INTEGER NOT NULL,
			content    TEXT    NOT NULL,
			created_at TEXT    NOT NULL,
			FOREIGN KEY (journey_id) REFERENCES journeys(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS journey_plans (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			journey_id TEXT    NOT NULL,
			version    INTEGER NOT NULL,
			content    TEXT    NOT NULL,
			created_at TEXT    NOT NULL,
			FOREIGN KEY (journey_id) REFERENCES journeys(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS journey_checklists (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			journey_id TEXT NOT NULL,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (journey_id) REFERENCES journeys(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS journey_checklist_items (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			checklist_id INTEGER NOT NULL,
			kind         TEXT    NOT NULL DEFAULT 'task',
			text         TEXT    NOT NULL,
			done         INTEGER NOT NULL DEFAULT 0,
			sort_order   INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (checklist_id) REFERENCES journey_checklists(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS journey_links (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			from_id    TEXT NOT NULL,
			to_id      TEXT NOT NULL,
			type       TEXT NOT NULL DEFAULT 'relates_to',
			note       TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (from_id) REFERENCES journeys(id) ON DELETE CASCADE,
			FOREIGN KEY (to_id)   REFERENCES journeys(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_links_from ON journey_links(from_id);
		CREATE INDEX IF NOT EXISTS idx_links_to   ON journey_links(to_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_links_unique ON journey_links(from_id, to_id, type);

		CREATE TABLE IF NOT EXISTS journey_sessions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			journey_id TEXT NOT NULL,
			tool       TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at   TEXT,
			summary    TEXT,
			FOREIGN KEY (journey_id) REFERENCES journeys(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_journey ON journey_sessions(journey_id);

		CREATE VIRTUAL TABLE IF NOT EXISTS journeys_fts USING fts5(
			id UNINDEXED,
			name,
			description
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS sync triggers (idempotent).
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='journeys_fts_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER journeys_fts_insert AFTER INSERT ON journeys BEGIN
				INSERT INTO journeys_fts(id, name, description)
				VALUES (new.id, new.name, new.description);
			END;

			CREATE TRIGGER journeys_fts_delete AFTER DELETE ON journeys BEGIN
				DELETE FROM journeys_fts WHERE id = old.id;
			END;

			CREATE TRIGGER journeys_fts_update AFTER UPDATE OF name, description ON journeys BEGIN
				DELETE FROM journeys_fts WHERE id = old.id;
				INSERT INTO journeys_fts(id, name, description)
				VALUES (new.id, new.name, new.description);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return nil
}

// nullableString converts empty strings to NULL for optional columns.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
