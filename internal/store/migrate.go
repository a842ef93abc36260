package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when an id does not match any row.
var ErrNotFound = errors.New("store: not found")

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v < 1 {
		// ---- Schema v1: founders / companies / messages ----

		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS founders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  linkedin_url TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  headline TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  summary TEXT NOT NULL DEFAULT '',
  processed_at TEXT NOT NULL
);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  founder_id INTEGER NOT NULL UNIQUE REFERENCES founders(id),
  name TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  news TEXT NOT NULL DEFAULT '[]',
  researched_at TEXT NOT NULL
);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS messages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  founder_id INTEGER NOT NULL REFERENCES founders(id),
  message_type TEXT NOT NULL,
  message_text TEXT NOT NULL,
  char_count INTEGER NOT NULL DEFAULT 0,
  generated_at TEXT NOT NULL,
  sent INTEGER NOT NULL DEFAULT 0
);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_messages_founder_type
ON messages(founder_id, message_type);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_messages_generated_at
ON messages(generated_at DESC);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
			return err
		}
	}

	if v < 2 {
		// ---- Schema v2: singleton resume context ----

		if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS resumes (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  filename TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL,
  tech_stack TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);
`); err != nil {
			return err
		}

		if _, err := tx.Exec(`PRAGMA user_version = 2;`); err != nil {
			return err
		}
	}

	return tx.Commit()
}
