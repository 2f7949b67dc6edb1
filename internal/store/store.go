// Package store persists lessons, roleplay sessions, writing exercises and
// LLM request events in SQLite. The pipelines themselves never touch it;
// callers read seed state out and write pipeline results back, keyed by
// (user, day). Content bodies are stored as JSON blobs so the store stays
// agnostic of pipeline types.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle and provides access to repositories.
type Store struct {
	db *sql.DB
}

// Open creates a Store connected to the SQLite database at dsn.
// It applies recommended pragmas and bootstraps the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SituationRepo returns the daily-situation repository.
func (s *Store) SituationRepo() SituationRepo {
	return &situationRepo{db: s.db}
}

// LessonRepo returns the lesson repository.
func (s *Store) LessonRepo() LessonRepo {
	return &lessonRepo{db: s.db}
}

// RoleplayRepo returns the roleplay-session repository.
func (s *Store) RoleplayRepo() RoleplayRepo {
	return &roleplayRepo{db: s.db}
}

// WritingRepo returns the writing repository.
func (s *Store) WritingRepo() WritingRepo {
	return &writingRepo{db: s.db}
}

// EventRepo returns the LLM request event repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db}
}

// applyPragmas configures SQLite for a small concurrent server workload.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. JONAS_DB environment variable
// 2. $XDG_DATA_HOME/jonas/jonas.db
// 3. ~/.local/share/jonas/jonas.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("JONAS_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "jonas", "jonas.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of the given file path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
