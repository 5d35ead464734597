// file: internal/metadata/musicbrainz_test.go
// version: 1.0.0
// guid: 1b2c3d4e-5f6a-4b7c-8d8e-9f0a1b2c3d4e

package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const mbReleases = `{"releases":[
	{"id":"r1","title":"Dune","date":"1965-08-01",
	 "artist-credit":[{"artist":{"name":"Frank Herbert"}},{"artist":{"name":"Simon Vance"}}],
	 "label-info":[{"label":{"name":"Chilton"}}]},
	{"id":"r2","title":"Dune (Unabridged)","date":"2006"},
	{"id":"r3","title":"Dune Part 3","label-info":[{"label":null}]},
	{"id":"r4","title":"Dune 4"},
	{"id":"r5","title":"Dune 5"}
]}`

func TestMusicBrainzSearch(t *testing.T) {
	var searchCalls atomic.Int32
	mb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searchCalls.Add(1)
		assert.Equal(t, "/ws/2/release/", r.URL.Path)
		assert.Equal(t, `release:"Dune"`, r.URL.Query().Get("query"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(mbReleases))
	}))
	defer mb.Close()

	caa := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch strings.TrimPrefix(r.URL.Path, "/release/") {
		case "r1":
			_, _ = w.Write([]byte(`{"images":[{"image":"http://caa/full.jpg","thumbnails":{"large":"http://caa/large.jpg","500":"http://caa/500.jpg"}}]}`))
		case "r2":
			_, _ = w.Write([]byte(`{"images":[{"image":"http://caa/full2.jpg","thumbnails":{"500":"http://caa/500-2.jpg"}}]}`))
		case "r3":
			_, _ = w.Write([]byte(`{"images":[{"image":"http://caa/full3.jpg"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer caa.Close()

	client := NewMusicBrainzClientWithBaseURLs(mb.URL, caa.URL)
	client.SetUserAgent("test-agent/1.0")

	results, err := client.search(context.Background(), "Dune")
	require.NoError(t, err)
	require.Len(t, results, maxMusicBrainzReleases)
	assert.EqualValues(t, 1, searchCalls.Load())

	first := results[0]
	assert.Equal(t, SourceMusicBrainz, first.Source)
	assert.Equal(t, "Dune", first.Title)
	assert.Equal(t, "Frank Herbert, Simon Vance", first.Author)
	assert.Equal(t, "1965", first.Year)
	assert.Equal(t, "Chilton", first.Publisher)
	assert.Equal(t, "http://caa/large.jpg", first.CoverURL)

	assert.Equal(t, "http://caa/500-2.jpg", results[1].CoverURL)
	assert.Equal(t, "2006", results[1].Year)
	assert.Equal(t, "http://caa/full3.jpg", results[2].CoverURL)
	assert.Empty(t, results[2].Publisher)
	// Cover Art Archive 404 only drops the cover.
	assert.Equal(t, "Dune 4", results[3].Title)
	assert.Empty(t, results[3].CoverURL)
}

func TestMusicBrainzSearchFailureIsSwallowed(t *testing.T) {
	mb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer mb.Close()

	client := NewMusicBrainzClientWithBaseURLs(mb.URL, mb.URL)
	assert.Empty(t, client.Search(context.Background(), "Dune"))
}

func TestMusicBrainzRateLimit(t *testing.T) {
	mb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"releases":[]}`))
	}))
	defer mb.Close()

	client := NewMusicBrainzClientWithBaseURLs(mb.URL, mb.URL)
	client.SetRateLimit(rate.Every(100*time.Millisecond), 1)

	start := time.Now()
	client.Search(context.Background(), "a")
	client.Search(context.Background(), "b")
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestMusicBrainzDefaults(t *testing.T) {
	t.Setenv("MUSICBRAINZ_BASE_URL", "")
	t.Setenv("COVERART_BASE_URL", "")
	client := NewMusicBrainzClient()
	assert.Equal(t, "https://musicbrainz.org", client.apiURL)
	assert.Equal(t, "https://coverartarchive.org", client.coverArtURL)
	assert.Equal(t, defaultUserAgent, client.userAgent)
}

var _ MetadataSource = (*MusicBrainzClient)(nil)
