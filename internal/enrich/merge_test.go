// file: internal/enrich/merge_test.go
// version: 1.0.0
// guid: 6f7a8b9c-0d1e-4f2a-3b4c-5d6e7f8a9b0c

package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdfalk/library-enricher/internal/metadata"
	"github.com/jdfalk/library-enricher/internal/models"
)

func fullCandidate() metadata.Candidate {
	return metadata.Candidate{
		Source:      metadata.SourceGoogleBooks,
		Title:       "Dune",
		Author:      "Frank Herbert",
		Narrator:    "Scott Brick",
		Publisher:   "Ace",
		Year:        "1965",
		ISBN:        "9780441013593",
		Description: "Desert planet",
		Genre:       "Fiction",
		Language:    "en",
		CoverURL:    "http://img/dune.jpg",
	}
}

func TestBuildUpdates_FillsEmptyFieldsOnly(t *testing.T) {
	entry := models.LibraryEntry{ID: "1", Title: "Dune (local)", Author: "F. Herbert", HasCover: true}

	u := BuildUpdates(entry, fullCandidate(), false)

	assert.Nil(t, u.Title)
	assert.Nil(t, u.Author)
	assert.Nil(t, u.CoverURL)
	require.NotNil(t, u.ISBN)
	assert.Equal(t, "9780441013593", *u.ISBN)
	assert.Equal(t, map[string]string{
		"narrator":    "Scott Brick",
		"publisher":   "Ace",
		"year":        "1965",
		"isbn":        "9780441013593",
		"description": "Desert planet",
		"genre":       "Fiction",
		"language":    "en",
	}, u.Fields())
}

func TestBuildUpdates_Overwrite(t *testing.T) {
	entry := models.LibraryEntry{ID: "1", Title: "Old", Author: "Someone", ISBN: "123", HasCover: true}

	u := BuildUpdates(entry, fullCandidate(), true)

	require.NotNil(t, u.Title)
	assert.Equal(t, "Dune", *u.Title)
	require.NotNil(t, u.ISBN)
	assert.Equal(t, "9780441013593", *u.ISBN)
	require.NotNil(t, u.CoverURL)
	assert.Equal(t, "http://img/dune.jpg", *u.CoverURL)
	assert.Len(t, u.Fields(), 9)
}

func TestBuildUpdates_EmptyCandidateFieldsIgnored(t *testing.T) {
	entry := models.LibraryEntry{ID: "1", Title: "Dune"}
	cand := metadata.Candidate{Source: "x", Title: "", Author: ""}

	for _, overwrite := range []bool{false, true} {
		u := BuildUpdates(entry, cand, overwrite)
		assert.True(t, u.IsEmpty(), "overwrite=%t", overwrite)
	}
}

func TestBuildUpdates_CoverWhenMissing(t *testing.T) {
	entry := models.LibraryEntry{ID: "1", Title: "Dune", HasCover: false}
	cand := metadata.Candidate{Source: "x", CoverURL: "http://img/c.jpg"}

	u := BuildUpdates(entry, cand, false)
	require.NotNil(t, u.CoverURL)
	assert.False(t, u.IsEmpty())
	assert.Empty(t, u.Fields())
}

func TestBuildUpdates_NoSharedPointers(t *testing.T) {
	cand := fullCandidate()
	u := BuildUpdates(models.LibraryEntry{}, cand, false)
	require.NotNil(t, u.Title)
	*u.Title = "changed"
	assert.Equal(t, "Dune", cand.Title)
}
