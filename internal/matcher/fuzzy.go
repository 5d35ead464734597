// file: internal/matcher/fuzzy.go
// version: 2.1.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package matcher

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/jdfalk/library-enricher/internal/models"
)

// FuzzyScore scores how well query matches target, case-insensitively.
// Returns 0 when query is not an in-order subsequence of target, and
// 100+len(query) when target contains query outright. Otherwise the score
// rewards contiguous runs and matches that start a word.
func FuzzyScore(query, target string) int {
	if query == "" || target == "" {
		return 0
	}
	q := []rune(strings.ToLower(query))
	t := []rune(strings.ToLower(target))

	if strings.Contains(string(t), string(q)) {
		return 100 + len(q)
	}
	score := 0
	qi := 0
	lastMatch := -1
	consecutive := 0

	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if t[ti] != q[qi] {
			continue
		}
		score++
		if ti == lastMatch+1 {
			consecutive++
			score += consecutive * 2
		} else {
			consecutive = 0
		}
		if ti == 0 || t[ti-1] == ' ' || t[ti-1] == '-' {
			score += 5
		}
		lastMatch = ti
		qi++
	}

	if qi < len(q) {
		return 0
	}
	return score
}

// EntryMatch is a library entry ranked against a search query.
type EntryMatch struct {
	Entry models.LibraryEntry `json:"entry"`
	Score int                 `json:"score"`
}

// SearchEntries ranks entries by their best FuzzyScore over title, author,
// ISBN and genre. Entries that do not match are dropped; a blank query
// returns every entry unranked.
func SearchEntries(entries []models.LibraryEntry, query string) []EntryMatch {
	q := strings.TrimSpace(query)
	if q == "" {
		out := make([]EntryMatch, len(entries))
		for i, e := range entries {
			out[i] = EntryMatch{Entry: e}
		}
		return out
	}

	var out []EntryMatch
	for _, e := range entries {
		best := 0
		for _, field := range []string{e.Title, e.Author, e.ISBN, e.Genre} {
			// Fields the query cannot be a subsequence of score 0; skip the scorer.
			if !fuzzy.MatchFold(q, field) {
				continue
			}
			best = max(best, FuzzyScore(q, field))
		}
		if best > 0 {
			out = append(out, EntryMatch{Entry: e, Score: best})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
