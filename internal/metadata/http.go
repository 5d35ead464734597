// file: internal/metadata/http.go
// version: 1.0.0
// guid: 3f1e2d4c-6b5a-4978-8c0d-1e2f3a4b5c6d

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jdfalk/library-enricher/internal/metrics"
)

// requester issues provider GET requests, each bounded by its own timeout.
type requester struct {
	httpClient *http.Client
	timeout    time.Duration
}

func newRequester() requester {
	return requester{
		httpClient: &http.Client{},
		timeout:    DefaultRequestTimeout,
	}
}

// getJSON fetches rawURL and decodes the JSON body into out. A non-200
// status, an expired timeout or an undecodable body are all errors.
func (r *requester) getJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// settle turns a provider search outcome into the never-failing form used by
// MetadataSource.Search, recording metrics on the way.
func settle(source, query string, search func() ([]Candidate, error)) []Candidate {
	start := time.Now()
	results, err := search()
	metrics.ObserveProviderDuration(source, time.Since(start))
	if err != nil {
		metrics.IncProviderFailure(source)
		log.Printf("[WARN] %s search for %q failed: %v", source, query, err)
		return nil
	}
	metrics.IncProviderSuccess(source)
	log.Printf("[DEBUG] %s search for %q returned %d candidates", source, query, len(results))
	return results
}

// baseURLFromEnv returns the env override for a provider base URL, or def.
func baseURLFromEnv(envKey, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return strings.TrimRight(v, "/")
	}
	return def
}

// leading returns at most the first n bytes of s.
func leading(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
