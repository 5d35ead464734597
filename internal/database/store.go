// file: internal/database/store.go
// version: 3.1.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3d

package database

import (
	"errors"
	"fmt"

	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/library-enricher/internal/models"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("entry not found")

// Store defines the interface for our database operations
// This abstraction allows us to support both PebbleDB (default) and SQLite3 (opt-in)
type Store interface {
	// Lifecycle
	Close() error

	// Entries, ordered by ID. IDs are ULIDs so this is creation order.
	ListEntries() ([]models.LibraryEntry, error)
	GetEntry(id string) (*models.LibraryEntry, error)
	SaveEntry(entry *models.LibraryEntry) (*models.LibraryEntry, error) // Generates ULID if ID is empty
	DeleteEntry(id string) error
	CountEntries() (int, error)

	// Enrichment write-back
	ApplyUpdates(id string, updates models.FieldUpdates) (*models.LibraryEntry, error)
	SetCover(id, path string) error
}

// GlobalStore is the process-wide store opened by InitializeStore.
var GlobalStore Store

// InitializeStore opens the configured backend into GlobalStore.
func InitializeStore(dbType, path string, enableSQLite bool) error {
	var err error

	switch dbType {
	case "sqlite", "sqlite3":
		if !enableSQLite {
			return fmt.Errorf("SQLite3 is not enabled. To use SQLite3, you must explicitly enable it with --enable-sqlite3-i-know-the-risks or set 'enable_sqlite3_i_know_the_risks: true' in your config file. PebbleDB is the recommended database for production use")
		}
		GlobalStore, err = NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
	case "pebble", "":
		// PebbleDB is the default
		GlobalStore, err = NewPebbleStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize PebbleDB store: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type: %s (supported: pebble, sqlite)", dbType)
	}

	return nil
}

// CloseStore closes GlobalStore if one is open.
func CloseStore() error {
	if GlobalStore == nil {
		return nil
	}
	err := GlobalStore.Close()
	GlobalStore = nil
	return err
}

// newULID returns an ID that sorts after every ID this process has issued
// before it, including ones made in the same millisecond.
func newULID() string {
	return ulid.Make().String()
}
