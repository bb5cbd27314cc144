// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers store creation, schema bootstrap, and shared test helpers

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates a SQLite store in a temporary directory.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return store
}

// testTime returns a stable timestamp that round-trips through RFC3339.
func testTime() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	if ValidRole("superuser") {
		t.Error(`ValidRole("superuser") = true, want false`)
	}
}
