// file: internal/database/sqlite_store.go
// version: 2.0.1
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jdfalk/library-enricher/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const entrySelectColumns = `
	id, title, author, narrator, publisher, year, isbn,
	description, genre, language, file_name, has_cover, cover_path
`

func scanEntry(scanner rowScanner, entry *models.LibraryEntry) error {
	return scanner.Scan(
		&entry.ID, &entry.Title, &entry.Author, &entry.Narrator,
		&entry.Publisher, &entry.Year, &entry.ISBN, &entry.Description,
		&entry.Genre, &entry.Language, &entry.FileName, &entry.HasCover,
		&entry.CoverPath,
	)
}

// SQLiteStore implements the Store interface using SQLite3
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db}

	// Create tables
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

// createTables creates all required tables
func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		narrator TEXT NOT NULL DEFAULT '',
		publisher TEXT NOT NULL DEFAULT '',
		year TEXT NOT NULL DEFAULT '',
		isbn TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		genre TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT '',
		file_name TEXT NOT NULL DEFAULT '',
		has_cover BOOLEAN NOT NULL DEFAULT 0,
		cover_path TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_entries_title ON entries(title);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListEntries() ([]models.LibraryEntry, error) {
	rows, err := s.db.Query(`SELECT ` + entrySelectColumns + ` FROM entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LibraryEntry{}
	for rows.Next() {
		var entry models.LibraryEntry
		if err := scanEntry(rows, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) GetEntry(id string) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	row := s.db.QueryRow(`SELECT `+entrySelectColumns+` FROM entries WHERE id = ?`, id)
	if err := scanEntry(row, &entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *SQLiteStore) SaveEntry(entry *models.LibraryEntry) (*models.LibraryEntry, error) {
	if entry.ID == "" {
		entry.ID = newULID()
	}
	_, err := s.db.Exec(`
		INSERT INTO entries (`+entrySelectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, author = excluded.author,
			narrator = excluded.narrator, publisher = excluded.publisher,
			year = excluded.year, isbn = excluded.isbn,
			description = excluded.description, genre = excluded.genre,
			language = excluded.language, file_name = excluded.file_name,
			has_cover = excluded.has_cover, cover_path = excluded.cover_path`,
		entry.ID, entry.Title, entry.Author, entry.Narrator, entry.Publisher,
		entry.Year, entry.ISBN, entry.Description, entry.Genre, entry.Language,
		entry.FileName, entry.HasCover, entry.CoverPath,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save entry %s: %w", entry.ID, err)
	}
	return entry, nil
}

func (s *SQLiteStore) DeleteEntry(id string) error {
	res, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLiteStore) CountEntries() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) ApplyUpdates(id string, updates models.FieldUpdates) (*models.LibraryEntry, error) {
	fields := updates.Fields()
	if len(fields) > 0 {
		// Field names come from FieldUpdates.Fields and match column names.
		sets := make([]string, 0, len(fields))
		args := make([]interface{}, 0, len(fields)+1)
		for name, value := range fields {
			sets = append(sets, name+" = ?")
			args = append(args, value)
		}
		args = append(args, id)
		res, err := s.db.Exec(`UPDATE entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update entry %s: %w", id, err)
		}
		if err := requireAffected(res); err != nil {
			return nil, err
		}
	}
	return s.GetEntry(id)
}

func (s *SQLiteStore) SetCover(id, path string) error {
	res, err := s.db.Exec(`UPDATE entries SET cover_path = ?, has_cover = ? WHERE id = ?`, path, path != "", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
