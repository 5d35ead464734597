// file: internal/database/pebble_store.go
// version: 2.0.1
// guid: 0c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble/v2"

	"github.com/jdfalk/library-enricher/internal/models"
)

// PebbleStore implements the Store interface using PebbleDB (LSM key-value store)
//
// Key Schema:
// - entry:<id>  -> LibraryEntry JSON
const entryPrefix = "entry:"

type PebbleStore struct {
	db *pebble.DB
	// serializes read-modify-write updates
	mu sync.Mutex
}

// NewPebbleStore creates a new PebbleDB store
func NewPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open PebbleDB: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

// Close closes the database
func (p *PebbleStore) Close() error {
	return p.db.Close()
}

func entryKey(id string) []byte {
	return []byte(entryPrefix + id)
}

func (p *PebbleStore) ListEntries() ([]models.LibraryEntry, error) {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(entryPrefix),
		UpperBound: []byte("entry;"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	entries := []models.LibraryEntry{}
	for iter.First(); iter.Valid(); iter.Next() {
		var entry models.LibraryEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", iter.Key(), err)
		}
		entries = append(entries, entry)
	}
	return entries, iter.Error()
}

func (p *PebbleStore) GetEntry(id string) (*models.LibraryEntry, error) {
	value, closer, err := p.db.Get(entryKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var entry models.LibraryEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (p *PebbleStore) SaveEntry(entry *models.LibraryEntry) (*models.LibraryEntry, error) {
	if entry.ID == "" {
		entry.ID = newULID()
	}
	if err := p.put(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (p *PebbleStore) DeleteEntry(id string) error {
	if _, err := p.GetEntry(id); err != nil {
		return err
	}
	return p.db.Delete(entryKey(id), pebble.Sync)
}

func (p *PebbleStore) CountEntries() (int, error) {
	entries, err := p.ListEntries()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (p *PebbleStore) ApplyUpdates(id string, updates models.FieldUpdates) (*models.LibraryEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, err := p.GetEntry(id)
	if err != nil {
		return nil, err
	}
	updated := updates.Apply(*entry)
	if err := p.put(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (p *PebbleStore) SetCover(id, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, err := p.GetEntry(id)
	if err != nil {
		return err
	}
	entry.CoverPath = path
	entry.HasCover = path != ""
	return p.put(entry)
}

func (p *PebbleStore) put(entry *models.LibraryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return p.db.Set(entryKey(entry.ID), data, pebble.Sync)
}
