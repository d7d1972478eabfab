package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection and provides access to repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// AttemptRepo returns an AttemptRepo backed by this store.
func (s *Store) AttemptRepo() AttemptRepo {
	return &attemptRepo{db: s.db, seq: s.seq}
}

// Generations returns a GenerationRepo backed by this store.
func (s *Store) Generations() GenerationRepo {
	return &generationRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for optimal single-user performance.
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

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
		id              TEXT PRIMARY KEY,
		sequence        INTEGER NOT NULL UNIQUE,
		lesson          TEXT NOT NULL,
		correct         INTEGER NOT NULL,
		total           INTEGER NOT NULL,
		percentage      REAL NOT NULL,
		elapsed_seconds INTEGER NOT NULL,
		started_at      INTEGER NOT NULL,
		finished_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS attempts_lesson ON attempts (lesson)`,
	`CREATE INDEX IF NOT EXISTS attempts_finished_at ON attempts (finished_at)`,
	`CREATE TABLE IF NOT EXISTS generations (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		created_at    INTEGER NOT NULL,
		topic         TEXT NOT NULL,
		requested     INTEGER NOT NULL,
		produced      INTEGER NOT NULL DEFAULT 0,
		lesson        TEXT NOT NULL DEFAULT '',
		provider      TEXT NOT NULL,
		model         TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		error         TEXT NOT NULL DEFAULT '',
		prompt        TEXT NOT NULL DEFAULT '',
		reply         TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS generations_topic ON generations (topic)`,
}

// migrate creates the schema. Every statement is idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. MATHDRILL_DB environment variable
// 2. $XDG_DATA_HOME/mathdrill/mathdrill.db
// 3. ~/.local/share/mathdrill/mathdrill.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MATHDRILL_DB"); p != "" {
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

	p := filepath.Join(dataHome, "mathdrill", "mathdrill.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
