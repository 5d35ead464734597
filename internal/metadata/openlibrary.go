// file: internal/metadata/openlibrary.go
// version: 2.0.0
// guid: 1a2b3c4d-5e6f-7a8b-9c0d-1e2f3a4b5c6d

package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxPublisherLen caps the joined publisher list; Open Library often returns
// dozens of imprint names for popular works.
const maxPublisherLen = 80

// OpenLibraryClient handles metadata fetching from Open Library API.
type OpenLibraryClient struct {
	requester
	baseURL   string
	coversURL string
}

// NewOpenLibraryClient creates a new Open Library API client
func NewOpenLibraryClient() *OpenLibraryClient {
	return NewOpenLibraryClientWithBaseURL(
		baseURLFromEnv("OPENLIBRARY_BASE_URL", "https://openlibrary.org"))
}

// NewOpenLibraryClientWithBaseURL creates a client with a custom base URL.
func NewOpenLibraryClientWithBaseURL(baseURL string) *OpenLibraryClient {
	return &OpenLibraryClient{
		requester: newRequester(),
		baseURL:   strings.TrimRight(baseURL, "/"),
		coversURL: baseURLFromEnv("OPENLIBRARY_COVERS_URL", "https://covers.openlibrary.org"),
	}
}

// Name returns the display name for this metadata source.
func (c *OpenLibraryClient) Name() string {
	return SourceOpenLibrary
}

// SetTimeout overrides the per-request timeout.
func (c *OpenLibraryClient) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SetCoversBaseURL changes the host used to build cover image URLs.
func (c *OpenLibraryClient) SetCoversBaseURL(coversURL string) {
	c.coversURL = strings.TrimRight(coversURL, "/")
}

// SearchResult represents a book search result from Open Library
type SearchResult struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Publisher        []string `json:"publisher"`
	Language         []string `json:"language"`
	Subject          []string `json:"subject"`
	CoverI           int      `json:"cover_i"`
}

// SearchResponse represents the API response from Open Library search
type SearchResponse struct {
	NumFound int            `json:"numFound"`
	Start    int            `json:"start"`
	Docs     []SearchResult `json:"docs"`
}

// Search runs a free-text query against Open Library.
func (c *OpenLibraryClient) Search(ctx context.Context, query string) []Candidate {
	return settle(c.Name(), query, func() ([]Candidate, error) {
		return c.search(ctx, query)
	})
}

func (c *OpenLibraryClient) search(ctx context.Context, query string) ([]Candidate, error) {
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=5", c.baseURL, url.QueryEscape(query))

	var searchResp SearchResponse
	if err := c.getJSON(ctx, searchURL, nil, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to search Open Library: %w", err)
	}

	docs := searchResp.Docs
	if len(docs) > 5 {
		docs = docs[:5]
	}

	results := make([]Candidate, 0, len(docs))
	for _, doc := range docs {
		results = append(results, c.docToCandidate(doc))
	}
	return results, nil
}

func (c *OpenLibraryClient) docToCandidate(doc SearchResult) Candidate {
	cand := Candidate{
		Source:    SourceOpenLibrary,
		Title:     doc.Title,
		Author:    strings.Join(doc.AuthorName, ", "),
		Publisher: truncateRunes(strings.Join(doc.Publisher, ", "), maxPublisherLen),
	}
	if doc.FirstPublishYear != 0 {
		cand.Year = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.ISBN) > 0 {
		cand.ISBN = doc.ISBN[0]
	}
	if len(doc.Language) > 0 {
		cand.Language = doc.Language[0]
	}
	subjects := doc.Subject
	if len(subjects) > 3 {
		subjects = subjects[:3]
	}
	cand.Genre = strings.Join(subjects, ", ")
	if doc.CoverI > 0 {
		cand.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, doc.CoverI)
	}
	return cand
}
