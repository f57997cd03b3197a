// Package prefstore is the persisted preference store: a namespaced
// key/value table in SQLite that survives reloads. Values are stored as JSON.
package prefstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("preference not found")

const schema = `CREATE TABLE IF NOT EXISTS preferences (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the preference database in dataDir.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "state.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection: an in-memory database is per-connection, and it
	// avoids "database is locked" between the TUI and CLI commands.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Write merges values into namespace. Keys not mentioned keep their value.
// All keys are written in one transaction.
func (s *Store) Write(namespace string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}

	// Deterministic order keeps the statement sequence stable.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, k := range keys {
		encoded, err := json.Marshal(values[k])
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encoding %s.%s: %w", namespace, k, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO preferences (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			namespace, k, string(encoded), now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("writing %s.%s: %w", namespace, k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", namespace, err)
	}
	return nil
}

// Read returns every stored value in namespace as raw JSON.
func (s *Store) Read(namespace string) (map[string]json.RawMessage, error) {
	rows, err := s.db.Query("SELECT key, value FROM preferences WHERE namespace = ?", namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = json.RawMessage(v)
	}
	return out, rows.Err()
}

// Get decodes a single value into dst.
func (s *Store) Get(namespace, key string, dst any) error {
	var v string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE namespace = ? AND key = ?", namespace, key).Scan(&v)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return fmt.Errorf("decoding %s.%s: %w", namespace, key, err)
	}
	return nil
}

// Int returns an integer value, or def when the key is absent.
func (s *Store) Int(namespace, key string, def int) (int, error) {
	var n int
	err := s.Get(namespace, key, &n)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return n, nil
}
