// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/tour/review persistence with automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL,
			email               TEXT NOT NULL UNIQUE,
			role                TEXT NOT NULL,
			password_hash       TEXT NOT NULL,
			password_changed_at TEXT NOT NULL,
			created_at          TEXT NOT NULL,

			CHECK (role IN ('user', 'guide', 'lead-guide', 'admin'))
		);

		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		CREATE TABLE IF NOT EXISTS tours (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL UNIQUE,
			duration         INTEGER NOT NULL,
			max_group_size   INTEGER NOT NULL,
			difficulty       TEXT NOT NULL,
			price            REAL NOT NULL,
			summary          TEXT NOT NULL,
			description      TEXT,
			ratings_average  REAL NOT NULL DEFAULT 4.5,
			ratings_quantity INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL,
			updated_at       TEXT NOT NULL,

			CHECK (difficulty IN ('easy', 'medium', 'difficult'))
		);

		CREATE INDEX IF NOT EXISTS idx_tours_difficulty ON tours(difficulty);
		CREATE INDEX IF NOT EXISTS idx_tours_price ON tours(price);

		CREATE TABLE IF NOT EXISTS reviews (
			id         TEXT PRIMARY KEY,
			tour_id    TEXT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			rating     INTEGER NOT NULL,
			content    TEXT NOT NULL,
			created_at TEXT NOT NULL,

			UNIQUE (tour_id, user_id),
			CHECK (rating BETWEEN 1 AND 5)
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_tour ON reviews(tour_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint
// violation. The match is deliberately narrow: CHECK violations must not be
// misreported as duplicates.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed: UNIQUE")
}
