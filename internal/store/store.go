// Package store persists users, items and the response ledger in SQLite.
// The ledger is the single source of truth: progress and statistics are
// derived from it on every read.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var (
	// ErrUnknownUser rejects a ledger write for a user that does not exist.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnknownItem rejects a ledger write for an item that does not exist.
	ErrUnknownItem = errors.New("unknown item")
	// ErrInvalidValue rejects a judgment outside the item's declared domain.
	ErrInvalidValue = errors.New("invalid value")
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	// model_name is '' rather than NULL when an item has no sub-target:
	// SQLite treats NULLs as distinct inside UNIQUE constraints, which
	// would allow duplicate (user, item) rows for quiz answers.
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK(role IN ('user', 'admin')),
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER UNIQUE NOT NULL,
		sequence_number INTEGER NOT NULL,
		category TEXT NOT NULL,
		kind TEXT NOT NULL CHECK(kind IN ('quiz', 'response_set')),
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS responses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL,
		model_name TEXT NOT NULL DEFAULT '',
		value INTEGER NOT NULL,
		recorded_at DATETIME NOT NULL,
		UNIQUE(user_id, item_id, model_name),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (item_id) REFERENCES items(item_id)
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}
