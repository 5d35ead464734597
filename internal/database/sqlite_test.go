// file: internal/database/sqlite_test.go
// version: 2.0.0
// guid: 3c4d5e6f-7a8b-9c0d-1e2f-3a4b5c6d7e8f

package database

import (
	"os"
	"path/filepath"
	"testing"

	ulid "github.com/oklog/ulid/v2"
)

// setupTestDB creates a temporary SQLite database for testing
// Returns the store and a cleanup function
func setupTestDB(t *testing.T) (Store, func()) {
	tmpfile := filepath.Join(t.TempDir(), "test_library_"+ulid.Make().String()+".db")

	store, err := NewSQLiteStore(tmpfile)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpfile)
	}

	return store, cleanup
}

func TestNewSQLiteStore(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	if store == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestSQLiteStore_Contract(t *testing.T) {
	runStoreContract(t, setupTestDB)
}
