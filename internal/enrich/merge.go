// file: internal/enrich/merge.go
// version: 1.0.0
// guid: 3c4d5e6f-7a8b-4c9d-0e1f-2a3b4c5d6e7f

package enrich

import (
	"github.com/jdfalk/library-enricher/internal/metadata"
	"github.com/jdfalk/library-enricher/internal/models"
)

// BuildUpdates decides which candidate fields to write onto entry. A field is
// taken when the candidate supplies it and either overwrite is set or the
// entry's own value is empty. The cover URL follows the same rule against
// entry.HasCover.
func BuildUpdates(entry models.LibraryEntry, c metadata.Candidate, overwrite bool) models.FieldUpdates {
	var u models.FieldUpdates

	pick := func(current, candidate string) *string {
		if candidate == "" {
			return nil
		}
		if !overwrite && current != "" {
			return nil
		}
		v := candidate
		return &v
	}

	u.Title = pick(entry.Title, c.Title)
	u.Author = pick(entry.Author, c.Author)
	u.Narrator = pick(entry.Narrator, c.Narrator)
	u.Publisher = pick(entry.Publisher, c.Publisher)
	u.Year = pick(entry.Year, c.Year)
	u.ISBN = pick(entry.ISBN, c.ISBN)
	u.Description = pick(entry.Description, c.Description)
	u.Genre = pick(entry.Genre, c.Genre)
	u.Language = pick(entry.Language, c.Language)

	if c.CoverURL != "" && (overwrite || !entry.HasCover) {
		cover := c.CoverURL
		u.CoverURL = &cover
	}
	return u
}
