// ABOUTME: SQLite credential store using modernc.org/sqlite
// ABOUTME: Keeps tokens in a single key/value table that survives process restarts

package credstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a durable Store backed by a local SQLite database.
type SQLite struct {
	db        *sql.DB
	namespace string
	logger    *slog.Logger
}

// OpenSQLite opens (and if needed creates) the credential database at path.
// Parent directories are created if needed.
func OpenSQLite(path, namespace string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "credstore", "backend", "sqlite")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection, so ":memory:" databases are shared by every query.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS credentials (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("credential store opened", "path", path)
	return &SQLite{db: db, namespace: namespace, logger: logger}, nil
}

func (s *SQLite) Get(kind Kind) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, kind.Key(s.namespace)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		s.logger.Error("reading credential", "kind", kind, "error", err)
		return "", false
	}
	return value, true
}

func (s *SQLite) Set(kind Kind, token string) {
	_, err := s.db.Exec(`
		INSERT INTO credentials (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		kind.Key(s.namespace), token, time.Now().UTC())
	if err != nil {
		s.logger.Error("writing credential", "kind", kind, "error", err)
	}
}

func (s *SQLite) Clear(kind Kind) {
	if _, err := s.db.Exec(`DELETE FROM credentials WHERE key = ?`, kind.Key(s.namespace)); err != nil {
		s.logger.Error("clearing credential", "kind", kind, "error", err)
	}
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
