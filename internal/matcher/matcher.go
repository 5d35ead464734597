// file: internal/matcher/matcher.go
// version: 2.0.0
// guid: 1f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package matcher

import (
	"github.com/jdfalk/library-enricher/internal/metadata"
	"github.com/jdfalk/library-enricher/internal/models"
)

// MinConfidence is the score a candidate must exceed to be selected.
const MinConfidence = 10.0

const (
	titleWeight      = 0.4
	coverBonus       = 20.0
	isbnBonus        = 15.0
	descriptionBonus = 15.0
)

// sourceBonus weights candidates by how reliable their provider has proven
// for book metadata.
var sourceBonus = map[string]float64{
	metadata.SourceGoogleBooks: 10,
	metadata.SourceOpenLibrary: 8,
	metadata.SourceITunes:      6,
}

// ScoredCandidate pairs a candidate with its score against one entry.
type ScoredCandidate struct {
	metadata.Candidate
	Score float64
}

// Score rates how well c describes entry. The result is never negative and
// depends only on its inputs.
func Score(c metadata.Candidate, entry models.LibraryEntry) float64 {
	score := 0.0
	if c.Title != "" && entry.Title != "" {
		score += float64(FuzzyScore(entry.Title, c.Title)) * titleWeight
	}
	if c.CoverURL != "" {
		score += coverBonus
	}
	if c.ISBN != "" {
		score += isbnBonus
	}
	if c.Description != "" {
		score += descriptionBonus
	}
	score += sourceBonus[c.Source]
	return score
}

// ScoreAll scores every candidate, preserving input order.
func ScoreAll(candidates []metadata.Candidate, entry models.LibraryEntry) []ScoredCandidate {
	out := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = ScoredCandidate{Candidate: c, Score: Score(c, entry)}
	}
	return out
}

// SelectBest returns the highest scoring candidate for entry. The first of
// equally scored candidates wins. ok is false when there are no candidates
// or the best score does not exceed MinConfidence.
func SelectBest(candidates []metadata.Candidate, entry models.LibraryEntry) (best ScoredCandidate, ok bool) {
	found := false
	for _, sc := range ScoreAll(candidates, entry) {
		if !found || sc.Score > best.Score {
			best = sc
			found = true
		}
	}
	if !found || best.Score <= MinConfidence {
		return ScoredCandidate{}, false
	}
	return best, true
}
