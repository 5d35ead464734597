// file: internal/library/file.go
// version: 1.0.0
// guid: 0d1e2f3a-4b5c-4d6e-7f8a-9b0c1d2e3f4a

package library

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jdfalk/library-enricher/internal/models"
)

// File is the on-disk YAML layout used by import and export.
type File struct {
	Entries []models.LibraryEntry `yaml:"entries"`
}

// ReadFile parses a library file.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse library file %s: %w", path, err)
	}
	return &f, nil
}

// WriteFile writes entries as a library file.
func WriteFile(path string, entries []models.LibraryEntry) error {
	data, err := yaml.Marshal(File{Entries: entries})
	if err != nil {
		return fmt.Errorf("failed to encode library file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write library file: %w", err)
	}
	return nil
}

// Import saves every entry in the file at path into the store. Entries
// without an id get a new one; entries with an id replace the stored copy.
func (s *Service) Import(path string) (int, error) {
	f, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	for i := range f.Entries {
		if _, err := s.store.SaveEntry(&f.Entries[i]); err != nil {
			return i, fmt.Errorf("failed to save entry %d: %w", i, err)
		}
	}
	log.Printf("[INFO] imported %d entries from %s", len(f.Entries), path)
	return len(f.Entries), nil
}

// Export writes every stored entry to path.
func (s *Service) Export(path string) (int, error) {
	entries, err := s.LoadEntries(nil)
	if err != nil {
		return 0, err
	}
	if err := WriteFile(path, entries); err != nil {
		return 0, err
	}
	log.Printf("[INFO] exported %d entries to %s", len(entries), path)
	return len(entries), nil
}
