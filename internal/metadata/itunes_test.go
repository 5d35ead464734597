// file: internal/metadata/itunes_test.go
// version: 1.0.0
// guid: 0a1b2c3d-4e5f-4a6b-9c7d-8e9f0a1b2c3d

package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itunesServer(t *testing.T, audiobooks, ebooks string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, q.Get("media"), q.Get("entity"))
		switch q.Get("media") {
		case "audiobook":
			assert.Equal(t, "4", q.Get("limit"))
			if audiobooks == "" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(audiobooks))
		case "ebook":
			assert.Equal(t, "3", q.Get("limit"))
			if ebooks == "" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(ebooks))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func TestITunesClient_Name(t *testing.T) {
	assert.Equal(t, "iTunes / Audible", NewITunesClient().Name())
}

func TestITunesSearchMapsAudiobookFields(t *testing.T) {
	server := itunesServer(t, `{"resultCount":1,"results":[{
		"collectionName":"Dune",
		"artistName":"Frank Herbert",
		"authorName":"Scott Brick",
		"publisherName":"Macmillan Audio",
		"releaseDate":"2007-01-01T08:00:00Z",
		"description":"<b>Set on the desert planet</b> Arrakis",
		"primaryGenreName":"Sci-Fi & Fantasy",
		"artworkUrl100":"https://is1.mzstatic.com/image/thumb/Music/source/100x100bb.jpg"
	}]}`, `{"resultCount":0,"results":[]}`)
	defer server.Close()

	results, err := NewITunesClientWithBaseURL(server.URL).search(context.Background(), "Dune Frank Herbert")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, SourceITunes, r.Source)
	assert.Equal(t, "Dune", r.Title)
	assert.Equal(t, "Frank Herbert", r.Author)
	assert.Equal(t, "Scott Brick", r.Narrator)
	assert.Equal(t, "Macmillan Audio", r.Publisher)
	assert.Equal(t, "2007", r.Year)
	assert.Equal(t, "Set on the desert planet Arrakis", r.Description)
	assert.Equal(t, "Sci-Fi & Fantasy", r.Genre)
	assert.Equal(t, "https://is1.mzstatic.com/image/thumb/Music/source/1000x1000bb.jpg", r.CoverURL)
	assert.Empty(t, r.ISBN)
}

func TestITunesSearchAudiobooksFirstAndCapped(t *testing.T) {
	items := func(prefix string, n int) string {
		s := `{"results":[`
		for i := 0; i < n; i++ {
			if i > 0 {
				s += ","
			}
			s += fmt.Sprintf(`{"trackName":"%s%d","longDescription":"long"}`, prefix, i)
		}
		return s + `]}`
	}
	server := itunesServer(t, items("ab", 4), items("eb", 3))
	defer server.Close()

	results := NewITunesClientWithBaseURL(server.URL).Search(context.Background(), "x")
	require.Len(t, results, maxITunesResults)
	assert.Equal(t, "ab0", results[0].Title)
	assert.Equal(t, "ab3", results[3].Title)
	assert.Equal(t, "eb0", results[4].Title)
	assert.Equal(t, "eb1", results[5].Title)
	assert.Equal(t, "long", results[0].Description)
}

func TestITunesSearchOneBranchFails(t *testing.T) {
	server := itunesServer(t, "", `{"results":[{"trackName":"Dune","artworkUrl60":"http://a/60x60.jpg"}]}`)
	defer server.Close()

	results, err := NewITunesClientWithBaseURL(server.URL).search(context.Background(), "Dune")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dune", results[0].Title)
	assert.Equal(t, "http://a/1000x1000.jpg", results[0].CoverURL)
}

func TestITunesSearchBothBranchesFail(t *testing.T) {
	server := itunesServer(t, "", "")
	defer server.Close()

	client := NewITunesClientWithBaseURL(server.URL)
	_, err := client.search(context.Background(), "Dune")
	assert.Error(t, err)
	assert.Empty(t, client.Search(context.Background(), "Dune"))
}

func TestUpscaleArtwork(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://x/100x100bb.jpg", "https://x/1000x1000bb.jpg"},
		{"https://x/600X600.jpg", "https://x/1000x1000.jpg"},
		{"https://x/cover.jpg", "https://x/cover.jpg"},
		{"https://x/60x60bb/30x30.jpg", "https://x/1000x1000bb/30x30.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, upscaleArtwork(tt.in))
	}
}

var _ MetadataSource = (*ITunesClient)(nil)
