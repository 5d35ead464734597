// file: internal/models/entry.go
// version: 2.0.0
// guid: 6e7f8a9b-0c1d-2e3f-4a5b-6c7d8e9f0a1b

package models

// LibraryEntry is a book or audiobook record owned by the library store.
// The enrichment pipeline only reads it; changes flow through FieldUpdates.
type LibraryEntry struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author" yaml:"author"`
	Narrator    string `json:"narrator,omitempty" yaml:"narrator,omitempty"`
	Publisher   string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Year        string `json:"year,omitempty" yaml:"year,omitempty"`
	ISBN        string `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Genre       string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Language    string `json:"language,omitempty" yaml:"language,omitempty"`
	FileName    string `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	HasCover    bool   `json:"has_cover" yaml:"has_cover"`
	CoverPath   string `json:"cover_path,omitempty" yaml:"cover_path,omitempty"`
}

// Label returns the display name used in progress reporting.
func (e LibraryEntry) Label() string {
	if e.Title != "" {
		return e.Title
	}
	return e.FileName
}

// FieldUpdates holds the fields an enrichment pass wants to write back.
// A nil pointer means "leave unchanged".
type FieldUpdates struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Narrator    *string `json:"narrator,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	Year        *string `json:"year,omitempty"`
	ISBN        *string `json:"isbn,omitempty"`
	Description *string `json:"description,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	Language    *string `json:"language,omitempty"`

	// CoverURL is a signal for the cover store, not a stored field. The
	// apply callback resolves it into image data and then drops it.
	CoverURL *string `json:"cover_url,omitempty"`
}

// IsEmpty reports whether no field (cover signal included) is set.
func (u FieldUpdates) IsEmpty() bool {
	return len(u.Fields()) == 0 && u.CoverURL == nil
}

// Fields returns the textual updates keyed by field name. The cover signal
// is not included.
func (u FieldUpdates) Fields() map[string]string {
	out := make(map[string]string)
	for name, ptr := range map[string]*string{
		"title":       u.Title,
		"author":      u.Author,
		"narrator":    u.Narrator,
		"publisher":   u.Publisher,
		"year":        u.Year,
		"isbn":        u.ISBN,
		"description": u.Description,
		"genre":       u.Genre,
		"language":    u.Language,
	} {
		if ptr != nil {
			out[name] = *ptr
		}
	}
	return out
}

// Apply returns a copy of entry with the textual updates written in.
func (u FieldUpdates) Apply(entry LibraryEntry) LibraryEntry {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&entry.Title, u.Title)
	set(&entry.Author, u.Author)
	set(&entry.Narrator, u.Narrator)
	set(&entry.Publisher, u.Publisher)
	set(&entry.Year, u.Year)
	set(&entry.ISBN, u.ISBN)
	set(&entry.Description, u.Description)
	set(&entry.Genre, u.Genre)
	set(&entry.Language, u.Language)
	return entry
}

// Summary is the outcome of one enrichment run.
type Summary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Processed returns the number of entries that reached an outcome.
func (s Summary) Processed() int {
	return s.Updated + s.Skipped + s.Failed
}

// ProgressEvent is emitted before each entry is processed and once more
// when the run ends (Done == true).
type ProgressEvent struct {
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
	CurrentTitle string `json:"current_title"`
	Updated      int    `json:"updated"`
	Skipped      int    `json:"skipped"`
	Failed       int    `json:"failed"`
	Done         bool   `json:"done"`
}
