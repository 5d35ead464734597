// file: internal/metadata/html.go
// version: 1.0.0
// guid: 5b6c7d8e-9f0a-4b1c-8d2e-3f4a5b6c7d8e

package metadata

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML drops markup from a provider description, decodes entities and
// collapses runs of whitespace.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
