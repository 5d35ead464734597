// file: internal/metadata/itunes.go
// version: 1.0.0
// guid: 7d8e9f0a-1b2c-4d3e-8f4a-5b6c7d8e9f0a

package metadata

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const maxITunesResults = 6

// artworkSizePattern matches the size segment of an mzstatic artwork URL,
// e.g. "100x100bb" in ".../100x100bb.jpg".
var artworkSizePattern = regexp.MustCompile(`(?i)(\d+)x(\d+)(bb)?`)

// ITunesClient searches the iTunes Search API for audiobooks and ebooks.
type ITunesClient struct {
	requester
	baseURL string
}

// NewITunesClient creates a new iTunes Search API client.
func NewITunesClient() *ITunesClient {
	return NewITunesClientWithBaseURL(baseURLFromEnv("ITUNES_BASE_URL", "https://itunes.apple.com"))
}

// NewITunesClientWithBaseURL creates a client with a custom base URL (for testing).
func NewITunesClientWithBaseURL(baseURL string) *ITunesClient {
	return &ITunesClient{
		requester: newRequester(),
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the display name for this metadata source.
func (c *ITunesClient) Name() string {
	return SourceITunes
}

// SetTimeout overrides the per-request timeout.
func (c *ITunesClient) SetTimeout(d time.Duration) {
	c.timeout = d
}

type itunesResponse struct {
	ResultCount int          `json:"resultCount"`
	Results     []itunesItem `json:"results"`
}

type itunesItem struct {
	CollectionName   string `json:"collectionName"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	AuthorName       string `json:"authorName"`
	PublisherName    string `json:"publisherName"`
	ReleaseDate      string `json:"releaseDate"`
	Description      string `json:"description"`
	LongDescription  string `json:"longDescription"`
	PrimaryGenreName string `json:"primaryGenreName"`
	ArtworkURL600    string `json:"artworkUrl600"`
	ArtworkURL100    string `json:"artworkUrl100"`
	ArtworkURL60     string `json:"artworkUrl60"`
}

// Search runs the audiobook and ebook searches concurrently and merges
// them, audiobooks first.
func (c *ITunesClient) Search(ctx context.Context, query string) []Candidate {
	return settle(c.Name(), query, func() ([]Candidate, error) {
		return c.search(ctx, query)
	})
}

func (c *ITunesClient) search(ctx context.Context, query string) ([]Candidate, error) {
	type media struct{ kind, limit string }
	kinds := []media{{"audiobook", "4"}, {"ebook", "3"}}

	errs := make([]error, len(kinds))
	tasks := make([]func() []itunesItem, len(kinds))
	for i, m := range kinds {
		tasks[i] = func() []itunesItem {
			items, err := c.searchMedia(ctx, query, m.kind, m.limit)
			if err != nil {
				errs[i] = err
				log.Printf("[DEBUG] iTunes %s search for %q failed: %v", m.kind, query, err)
			}
			return items
		}
	}
	branches := fanOut(tasks, func(i int, r any) {
		errs[i] = fmt.Errorf("iTunes %s search panicked: %v", kinds[i].kind, r)
	})

	if errs[0] != nil && errs[1] != nil {
		return nil, errors.Join(errs...)
	}

	var items []itunesItem
	for _, b := range branches {
		items = append(items, b...)
	}
	if len(items) > maxITunesResults {
		items = items[:maxITunesResults]
	}

	results := make([]Candidate, 0, len(items))
	for _, item := range items {
		results = append(results, itemToCandidate(item))
	}
	return results, nil
}

func (c *ITunesClient) searchMedia(ctx context.Context, query, kind, limit string) ([]itunesItem, error) {
	params := url.Values{}
	params.Set("term", query)
	params.Set("media", kind)
	params.Set("entity", kind)
	params.Set("limit", limit)

	var resp itunesResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to search iTunes %s: %w", kind, err)
	}
	return resp.Results, nil
}

func itemToCandidate(item itunesItem) Candidate {
	title := item.CollectionName
	if title == "" {
		title = item.TrackName
	}
	desc := item.Description
	if desc == "" {
		desc = item.LongDescription
	}
	return Candidate{
		Source:      SourceITunes,
		Title:       title,
		Author:      item.ArtistName,
		Narrator:    item.AuthorName,
		Publisher:   item.PublisherName,
		Year:        leading(item.ReleaseDate, 4),
		Description: StripHTML(desc),
		Genre:       item.PrimaryGenreName,
		CoverURL:    bestArtwork(item),
	}
}

// bestArtwork picks the largest artwork URL and rewrites its size segment
// to request a 1000x1000 rendition.
func bestArtwork(item itunesItem) string {
	for _, u := range []string{item.ArtworkURL600, item.ArtworkURL100, item.ArtworkURL60} {
		if u != "" {
			return upscaleArtwork(u)
		}
	}
	return ""
}

func upscaleArtwork(u string) string {
	loc := artworkSizePattern.FindStringSubmatchIndex(u)
	if loc == nil {
		return u
	}
	suffix := ""
	if loc[6] >= 0 {
		suffix = u[loc[6]:loc[7]]
	}
	return u[:loc[0]] + "1000x1000" + suffix + u[loc[1]:]
}
