// file: internal/metadata/source.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-e1f2a3b4c5d6

package metadata

import (
	"context"
	"time"
)

// Display names of the built-in sources. The matcher keys its reliability
// bonus on these values.
const (
	SourceGoogleBooks = "Google Books"
	SourceOpenLibrary = "Open Library"
	SourceITunes      = "iTunes / Audible"
	SourceMusicBrainz = "MusicBrainz"
)

// DefaultRequestTimeout bounds every outbound provider request.
const DefaultRequestTimeout = 9 * time.Second

// Candidate is one normalized search hit from a provider. Every field is
// optional; an empty string means the provider did not supply it.
type Candidate struct {
	Source      string `json:"source"`
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Narrator    string `json:"narrator,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Year        string `json:"year,omitempty"`
	ISBN        string `json:"isbn,omitempty"`
	Description string `json:"description,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Language    string `json:"language,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

// MetadataSource is a pluggable metadata provider.
//
// Search never fails: transport errors, timeouts and malformed payloads are
// logged and reported as an empty result.
type MetadataSource interface {
	Name() string
	Search(ctx context.Context, query string) []Candidate
}

// SourceOptions configures the built-in sources. Empty fields fall back to
// each client's defaults (environment override, then the public endpoint).
type SourceOptions struct {
	GoogleBooksURL       string
	OpenLibraryURL       string
	OpenLibraryCoversURL string
	ITunesURL            string
	MusicBrainzURL       string
	CoverArtURL          string
	UserAgent            string
	Timeout              time.Duration
}

// NewDefaultSources builds the four built-in sources in aggregation order.
func NewDefaultSources(opts SourceOptions) []MetadataSource {
	gb := NewGoogleBooksClient()
	if opts.GoogleBooksURL != "" {
		gb = NewGoogleBooksClientWithBaseURL(opts.GoogleBooksURL)
	}
	ol := NewOpenLibraryClient()
	if opts.OpenLibraryURL != "" {
		ol = NewOpenLibraryClientWithBaseURL(opts.OpenLibraryURL)
	}
	if opts.OpenLibraryCoversURL != "" {
		ol.SetCoversBaseURL(opts.OpenLibraryCoversURL)
	}
	it := NewITunesClient()
	if opts.ITunesURL != "" {
		it = NewITunesClientWithBaseURL(opts.ITunesURL)
	}
	mb := NewMusicBrainzClient()
	if opts.MusicBrainzURL != "" || opts.CoverArtURL != "" {
		mb = NewMusicBrainzClientWithBaseURLs(opts.MusicBrainzURL, opts.CoverArtURL)
	}
	if opts.UserAgent != "" {
		mb.SetUserAgent(opts.UserAgent)
	}
	if opts.Timeout > 0 {
		gb.SetTimeout(opts.Timeout)
		ol.SetTimeout(opts.Timeout)
		it.SetTimeout(opts.Timeout)
		mb.SetTimeout(opts.Timeout)
	}
	return []MetadataSource{gb, ol, it, mb}
}
