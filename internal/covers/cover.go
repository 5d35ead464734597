// file: internal/covers/cover.go
// version: 2.1.0
// guid: 4efaa7b8-e29a-47f3-84f7-39b46bfc9a01

package covers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// MaxCoverBytes caps a single downloaded image.
const MaxCoverBytes = 10 * 1024 * 1024

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// Store keeps one cover image per library entry under a directory, named
// {dir}/{entryID}.{ext}.
type Store struct {
	dir    string
	client *http.Client
}

// NewStore returns a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Dir returns the directory covers are written to.
func (s *Store) Dir() string { return s.dir }

// Save downloads coverURL and stores it as the cover of entryID, replacing
// any previous cover. Returns the local file path.
func (s *Store) Save(ctx context.Context, coverURL, entryID string) (string, error) {
	if coverURL == "" {
		return "", fmt.Errorf("empty cover URL")
	}
	if entryID == "" || strings.ContainsAny(entryID, `/\`) {
		return "", fmt.Errorf("invalid entry ID %q", entryID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create cover request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cover download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxCoverBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read cover: %w", err)
	}
	if len(data) > MaxCoverBytes {
		return "", fmt.Errorf("cover exceeds %d bytes", MaxCoverBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unexpected content type: %s", contentType)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}

	destPath := filepath.Join(s.dir, entryID+extensionFromContentType(contentType))
	tmp, err := os.CreateTemp(s.dir, entryID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create cover file: %w", err)
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store cover file: %w", err)
	}
	// Only drop covers under other extensions once the new one is in place.
	for _, old := range s.existing(entryID) {
		if old != destPath {
			os.Remove(old)
		}
	}
	return destPath, nil
}

// Path returns the stored cover for entryID, or "" if there is none.
func (s *Store) Path(entryID string) string {
	if found := s.existing(entryID); len(found) > 0 {
		return found[0]
	}
	return ""
}

func (s *Store) existing(entryID string) []string {
	var out []string
	for _, ext := range imageExtensions {
		p := filepath.Join(s.dir, entryID+ext)
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func extensionFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "gif"):
		return ".gif"
	case strings.Contains(ct, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
