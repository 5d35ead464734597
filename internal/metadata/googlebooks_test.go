// file: internal/metadata/googlebooks_test.go
// version: 2.0.0
// guid: d4e5f6a7-b8c9-0d1e-2f3a-b4c5d6e7f8a9

package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleBooksClient_Name(t *testing.T) {
	c := NewGoogleBooksClient()
	assert.Equal(t, "Google Books", c.Name())
}

func TestGoogleBooksClient_UsesEnvBaseURL(t *testing.T) {
	t.Setenv("GOOGLE_BOOKS_BASE_URL", "http://books.local/v1/")
	c := NewGoogleBooksClient()
	assert.Equal(t, "http://books.local/v1", c.baseURL)
	assert.Equal(t, DefaultRequestTimeout, c.timeout)
}

func TestGoogleBooksClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "The Hobbit Tolkien", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"volumeInfo": {
					"title": "The Hobbit",
					"authors": ["J.R.R. Tolkien", "Christopher Tolkien"],
					"publisher": "HarperCollins",
					"publishedDate": "1937-09-21",
					"description": "<p>In a hole in the ground <i>there lived</i> a hobbit.</p>",
					"categories": ["Fiction", "Fantasy"],
					"language": "en",
					"industryIdentifiers": [
						{"type": "ISBN_10", "identifier": "0261103342"},
						{"type": "ISBN_13", "identifier": "9780261103344"}
					],
					"imageLinks": {
						"smallThumbnail": "http://example.com/small.jpg",
						"thumbnail": "http://example.com/thumb.jpg",
						"medium": "http://example.com/medium.jpg"
					}
				}
			}]
		}`))
	}))
	defer server.Close()

	client := NewGoogleBooksClientWithBaseURL(server.URL)
	results, err := client.search(context.Background(), "The Hobbit Tolkien")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, SourceGoogleBooks, r.Source)
	assert.Equal(t, "The Hobbit", r.Title)
	assert.Equal(t, "J.R.R. Tolkien, Christopher Tolkien", r.Author)
	assert.Equal(t, "HarperCollins", r.Publisher)
	assert.Equal(t, "1937", r.Year)
	assert.Equal(t, "9780261103344", r.ISBN)
	assert.Equal(t, "In a hole in the ground there lived a hobbit.", r.Description)
	assert.Equal(t, "Fiction, Fantasy", r.Genre)
	assert.Equal(t, "en", r.Language)
	assert.Equal(t, "http://example.com/medium.jpg", r.CoverURL)
}

func TestGoogleBooksClient_NoISBN13(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"volumeInfo":{"title":"Old","publishedDate":"19","industryIdentifiers":[{"type":"ISBN_10","identifier":"0261103342"}]}}]}`))
	}))
	defer server.Close()

	results, err := NewGoogleBooksClientWithBaseURL(server.URL).search(context.Background(), "Old")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].ISBN)
	assert.Empty(t, results[0].CoverURL)
	assert.Equal(t, "19", results[0].Year)
}

func TestGoogleBooksClient_APIErrorIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGoogleBooksClientWithBaseURL(server.URL)
	_, err := client.search(context.Background(), "test")
	assert.Error(t, err)
	assert.Empty(t, client.Search(context.Background(), "test"))
}

func TestGoogleBooksClient_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [`))
	}))
	defer server.Close()

	assert.Empty(t, NewGoogleBooksClientWithBaseURL(server.URL).Search(context.Background(), "test"))
}

func TestGoogleBooksClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewGoogleBooksClientWithBaseURL(server.URL)
	client.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	results := client.Search(context.Background(), "slow")
	assert.Empty(t, results)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// Verify interface compliance
var _ MetadataSource = (*GoogleBooksClient)(nil)
