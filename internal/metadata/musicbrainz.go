// file: internal/metadata/musicbrainz.go
// version: 1.0.0
// guid: 8e9f0a1b-2c3d-4e4f-9a5b-6c7d8e9f0a1b

package metadata

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxMusicBrainzReleases = 4
	defaultUserAgent       = "library-enricher/1.0 (https://github.com/jdfalk/library-enricher)"
)

// MusicBrainzClient searches MusicBrainz releases and resolves cover art for
// each hit through the Cover Art Archive.
type MusicBrainzClient struct {
	requester
	apiURL      string
	coverArtURL string
	userAgent   string
	limiter     *rate.Limiter
}

// NewMusicBrainzClient creates a new MusicBrainz client.
func NewMusicBrainzClient() *MusicBrainzClient {
	return NewMusicBrainzClientWithBaseURLs(
		baseURLFromEnv("MUSICBRAINZ_BASE_URL", "https://musicbrainz.org"),
		baseURLFromEnv("COVERART_BASE_URL", "https://coverartarchive.org"),
	)
}

// NewMusicBrainzClientWithBaseURLs creates a client with custom MusicBrainz
// and Cover Art Archive hosts. Empty values keep the public endpoints.
func NewMusicBrainzClientWithBaseURLs(apiURL, coverArtURL string) *MusicBrainzClient {
	if apiURL == "" {
		apiURL = "https://musicbrainz.org"
	}
	if coverArtURL == "" {
		coverArtURL = "https://coverartarchive.org"
	}
	return &MusicBrainzClient{
		requester:   newRequester(),
		apiURL:      strings.TrimRight(apiURL, "/"),
		coverArtURL: strings.TrimRight(coverArtURL, "/"),
		userAgent:   defaultUserAgent,
		// MusicBrainz asks anonymous clients for at most one request per second.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Name returns the display name for this metadata source.
func (c *MusicBrainzClient) Name() string {
	return SourceMusicBrainz
}

// SetTimeout overrides the per-request timeout.
func (c *MusicBrainzClient) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SetUserAgent sets the identifying User-Agent MusicBrainz requires.
func (c *MusicBrainzClient) SetUserAgent(ua string) {
	c.userAgent = ua
}

// SetRateLimit replaces the release-search limiter.
func (c *MusicBrainzClient) SetRateLimit(limit rate.Limit, burst int) {
	c.limiter = rate.NewLimiter(limit, burst)
}

type mbReleaseResponse struct {
	Releases []mbRelease `json:"releases"`
}

type mbRelease struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Date         string           `json:"date"`
	ArtistCredit []mbArtistCredit `json:"artist-credit"`
	LabelInfo    []mbLabelInfo    `json:"label-info"`
}

type mbArtistCredit struct {
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
}

type mbLabelInfo struct {
	Label *struct {
		Name string `json:"name"`
	} `json:"label"`
}

type coverArtResponse struct {
	Images []coverArtImage `json:"images"`
}

type coverArtImage struct {
	Image      string            `json:"image"`
	Thumbnails map[string]string `json:"thumbnails"`
}

// Search looks up releases whose title matches the query exactly.
func (c *MusicBrainzClient) Search(ctx context.Context, query string) []Candidate {
	return settle(c.Name(), query, func() ([]Candidate, error) {
		return c.search(ctx, query)
	})
}

func (c *MusicBrainzClient) search(ctx context.Context, query string) ([]Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	searchURL := fmt.Sprintf("%s/ws/2/release/?query=%s&limit=5&fmt=json",
		c.apiURL, url.QueryEscape(fmt.Sprintf("release:%q", query)))

	var resp mbReleaseResponse
	headers := map[string]string{"User-Agent": c.userAgent, "Accept": "application/json"}
	if err := c.getJSON(ctx, searchURL, headers, &resp); err != nil {
		return nil, fmt.Errorf("failed to search MusicBrainz: %w", err)
	}

	releases := resp.Releases
	if len(releases) > maxMusicBrainzReleases {
		releases = releases[:maxMusicBrainzReleases]
	}

	results := make([]Candidate, 0, len(releases))
	for _, rel := range releases {
		results = append(results, Candidate{
			Source:    SourceMusicBrainz,
			Title:     rel.Title,
			Author:    joinArtistCredits(rel.ArtistCredit),
			Year:      leading(rel.Date, 4),
			Publisher: firstLabel(rel.LabelInfo),
			CoverURL:  c.lookupCover(ctx, rel.ID),
		})
	}
	return results, nil
}

// lookupCover resolves a release's front image. Any failure just means the
// candidate has no cover.
func (c *MusicBrainzClient) lookupCover(ctx context.Context, releaseID string) string {
	if releaseID == "" {
		return ""
	}
	var resp coverArtResponse
	headers := map[string]string{"User-Agent": c.userAgent, "Accept": "application/json"}
	if err := c.getJSON(ctx, c.coverArtURL+"/release/"+url.PathEscape(releaseID), headers, &resp); err != nil {
		log.Printf("[DEBUG] Cover Art Archive lookup for release %s failed: %v", releaseID, err)
		return ""
	}
	if len(resp.Images) == 0 {
		return ""
	}
	img := resp.Images[0]
	if u := img.Thumbnails["large"]; u != "" {
		return u
	}
	if u := img.Thumbnails["500"]; u != "" {
		return u
	}
	return img.Image
}

func joinArtistCredits(credits []mbArtistCredit) string {
	names := make([]string, 0, len(credits))
	for _, ac := range credits {
		names = append(names, ac.Artist.Name)
	}
	return strings.Join(names, ", ")
}

func firstLabel(infos []mbLabelInfo) string {
	if len(infos) == 0 || infos[0].Label == nil {
		return ""
	}
	return infos[0].Label.Name
}
