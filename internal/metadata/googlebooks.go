// file: internal/metadata/googlebooks.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-f2a3b4c5d6e7

package metadata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// GoogleBooksClient fetches metadata from the Google Books Volume API.
// No API key is required for basic searches (free tier, ~1000 req/day).
type GoogleBooksClient struct {
	requester
	baseURL string
}

// NewGoogleBooksClient creates a new Google Books API client.
func NewGoogleBooksClient() *GoogleBooksClient {
	return NewGoogleBooksClientWithBaseURL(
		baseURLFromEnv("GOOGLE_BOOKS_BASE_URL", "https://www.googleapis.com/books/v1"))
}

// NewGoogleBooksClientWithBaseURL creates a client with a custom base URL (for testing).
func NewGoogleBooksClientWithBaseURL(baseURL string) *GoogleBooksClient {
	return &GoogleBooksClient{
		requester: newRequester(),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the display name for this metadata source.
func (c *GoogleBooksClient) Name() string {
	return SourceGoogleBooks
}

// SetTimeout overrides the per-request timeout.
func (c *GoogleBooksClient) SetTimeout(d time.Duration) {
	c.timeout = d
}

type googleBooksResponse struct {
	TotalItems int              `json:"totalItems"`
	Items      []googleBooksVol `json:"items"`
}

type googleBooksVol struct {
	VolumeInfo googleBooksVolumeInfo `json:"volumeInfo"`
}

type googleBooksVolumeInfo struct {
	Title               string                  `json:"title"`
	Authors             []string                `json:"authors"`
	Publisher           string                  `json:"publisher"`
	PublishedDate       string                  `json:"publishedDate"`
	Description         string                  `json:"description"`
	IndustryIdentifiers []googleBooksIndustryID `json:"industryIdentifiers"`
	Categories          []string                `json:"categories"`
	ImageLinks          googleBooksImageLinks   `json:"imageLinks"`
	Language            string                  `json:"language"`
}

type googleBooksIndustryID struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type googleBooksImageLinks struct {
	ExtraLarge     string `json:"extraLarge"`
	Large          string `json:"large"`
	Medium         string `json:"medium"`
	Small          string `json:"small"`
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// best returns the largest image Google Books offers for the volume.
func (l googleBooksImageLinks) best() string {
	for _, u := range []string{l.ExtraLarge, l.Large, l.Medium, l.Small, l.Thumbnail, l.SmallThumbnail} {
		if u != "" {
			return u
		}
	}
	return ""
}

// Search queries Google Books with free text (title, optionally author).
func (c *GoogleBooksClient) Search(ctx context.Context, query string) []Candidate {
	return settle(c.Name(), query, func() ([]Candidate, error) {
		return c.search(ctx, query)
	})
}

func (c *GoogleBooksClient) search(ctx context.Context, query string) ([]Candidate, error) {
	searchURL := fmt.Sprintf("%s/volumes?q=%s&maxResults=5", c.baseURL, url.QueryEscape(query))

	var gbResp googleBooksResponse
	if err := c.getJSON(ctx, searchURL, nil, &gbResp); err != nil {
		return nil, fmt.Errorf("failed to search Google Books: %w", err)
	}

	results := make([]Candidate, 0, len(gbResp.Items))
	for _, item := range gbResp.Items {
		vi := item.VolumeInfo
		cand := Candidate{
			Source:      SourceGoogleBooks,
			Title:       vi.Title,
			Author:      strings.Join(vi.Authors, ", "),
			Publisher:   vi.Publisher,
			Year:        leading(vi.PublishedDate, 4),
			Description: StripHTML(vi.Description),
			Genre:       strings.Join(vi.Categories, ", "),
			Language:    vi.Language,
			CoverURL:    vi.ImageLinks.best(),
		}
		for _, id := range vi.IndustryIdentifiers {
			if id.Type == "ISBN_13" {
				cand.ISBN = id.Identifier
				break
			}
		}
		results = append(results, cand)
	}
	return results, nil
}
