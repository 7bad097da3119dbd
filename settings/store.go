// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: settings/store.go
// Summary: SQLite store for window settings blobs and find history.
//
// Values are opaque blobs keyed by a window title and a value name, such as
// ("Find/Replace", "Position"). Find strings are kept newest first.

package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fwviews/config"

	_ "modernc.org/sqlite"
)

// FindDialogTitle keys the find/replace window settings.
const FindDialogTitle = "Find/Replace"

// Value names stored under FindDialogTitle.
const (
	ValuePosition = "Position"
	ValueExpanded = "Expanded"
)

// ErrNotFound reports a missing value.
var ErrNotFound = errors.New("settings: value not found")

const settingsSchemaVersion = 1

const settingsSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS settings (
    title TEXT NOT NULL,
    name  TEXT NOT NULL,
    value BLOB,
    PRIMARY KEY (title, name)
);

CREATE TABLE IF NOT EXISTS find_history (
    text    TEXT PRIMARY KEY,
    used_at INTEGER NOT NULL  -- UnixNano
);

CREATE INDEX IF NOT EXISTS idx_find_history_used ON find_history(used_at);
`

// Store is a settings database. It is safe for concurrent use.
type Store struct {
	db    *sql.DB
	limit int

	mu   sync.Mutex
	last int64
}

// Open opens or creates the database at path. historyLimit bounds the
// find history; zero keeps everything.
func Open(path string, historyLimit int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(settingsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	return &Store{db: db, limit: historyLimit}, nil
}

// OpenFromConfig opens the database named by the "settings" section.
func OpenFromConfig(store *config.Store) (*Store, error) {
	path, err := store.SettingsDBPath()
	if err != nil {
		return nil, err
	}
	return Open(path, store.System().GetInt("find_replace", "history_limit", 20))
}

func migrate(db *sql.DB) error {
	var current int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if current == settingsSchemaVersion {
		return nil
	}
	log.Printf("[SETTINGS] Migrating schema from version %d to %d", current, settingsSchemaVersion)
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", settingsSchemaVersion)
	return err
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores value under (title, name).
func (s *Store) Put(title, name string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO settings (title, name, value) VALUES (?, ?, ?) "+
			"ON CONFLICT(title, name) DO UPDATE SET value = excluded.value",
		title, name, value)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", title, name, err)
	}
	return nil
}

// Get returns the value under (title, name) or ErrNotFound.
func (s *Store) Get(title, name string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM settings WHERE title = ? AND name = ?", title, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", title, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", title, name, err)
	}
	return value, nil
}

// Delete removes the value under (title, name).
func (s *Store) Delete(title, name string) error {
	_, err := s.db.Exec("DELETE FROM settings WHERE title = ? AND name = ?", title, name)
	return err
}

// stamp returns a strictly increasing timestamp so that strings added in
// quick succession keep their order.
func (s *Store) stamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixNano()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}

// AddFindWhat records text as the most recent find string.
func (s *Store) AddFindWhat(text string) error {
	if text == "" {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(
		"INSERT INTO find_history (text, used_at) VALUES (?, ?) "+
			"ON CONFLICT(text) DO UPDATE SET used_at = excluded.used_at",
		text, s.stamp()); err != nil {
		return fmt.Errorf("add find history: %w", err)
	}
	if s.limit > 0 {
		if _, err := tx.Exec(
			"DELETE FROM find_history WHERE text NOT IN "+
				"(SELECT text FROM find_history ORDER BY used_at DESC LIMIT ?)",
			s.limit); err != nil {
			return fmt.Errorf("trim find history: %w", err)
		}
	}
	return tx.Commit()
}

// FindWhatHistory returns up to limit find strings, newest first. A limit of
// zero returns all of them.
func (s *Store) FindWhatHistory(limit int) ([]string, error) {
	query := "SELECT text FROM find_history ORDER BY used_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, rows.Err()
}
