// file: internal/database/mock_store.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package database

import (
	"github.com/jdfalk/library-enricher/internal/models"
)

// MockStore is a simple mock implementation for testing services
type MockStore struct {
	CloseFunc        func() error
	ListEntriesFunc  func() ([]models.LibraryEntry, error)
	GetEntryFunc     func(id string) (*models.LibraryEntry, error)
	SaveEntryFunc    func(entry *models.LibraryEntry) (*models.LibraryEntry, error)
	DeleteEntryFunc  func(id string) error
	CountEntriesFunc func() (int, error)
	ApplyUpdatesFunc func(id string, updates models.FieldUpdates) (*models.LibraryEntry, error)
	SetCoverFunc     func(id, path string) error
}

func (m *MockStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockStore) ListEntries() ([]models.LibraryEntry, error) {
	if m.ListEntriesFunc != nil {
		return m.ListEntriesFunc()
	}
	return []models.LibraryEntry{}, nil
}

func (m *MockStore) GetEntry(id string) (*models.LibraryEntry, error) {
	if m.GetEntryFunc != nil {
		return m.GetEntryFunc(id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) SaveEntry(entry *models.LibraryEntry) (*models.LibraryEntry, error) {
	if m.SaveEntryFunc != nil {
		return m.SaveEntryFunc(entry)
	}
	return entry, nil
}

func (m *MockStore) DeleteEntry(id string) error {
	if m.DeleteEntryFunc != nil {
		return m.DeleteEntryFunc(id)
	}
	return nil
}

func (m *MockStore) CountEntries() (int, error) {
	if m.CountEntriesFunc != nil {
		return m.CountEntriesFunc()
	}
	return 0, nil
}

func (m *MockStore) ApplyUpdates(id string, updates models.FieldUpdates) (*models.LibraryEntry, error) {
	if m.ApplyUpdatesFunc != nil {
		return m.ApplyUpdatesFunc(id, updates)
	}
	return nil, ErrNotFound
}

func (m *MockStore) SetCover(id, path string) error {
	if m.SetCoverFunc != nil {
		return m.SetCoverFunc(id, path)
	}
	return nil
}

var _ Store = (*MockStore)(nil)
