// file: internal/server/error_handler_test.go
// version: 2.0.0
// guid: 6e7f8a9b-0c1d-2e3f-4a5b-6c7d8e9f0a1b

package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jdfalk/library-enricher/internal/database"
	"github.com/jdfalk/library-enricher/internal/library"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestRespondWithBadRequest(t *testing.T) {
	c, w := newTestContext()
	RespondWithBadRequest(c, "test error")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "test error") {
		t.Errorf("expected error message in response, got %q", w.Body.String())
	}
}

func TestRespondWithNotFound(t *testing.T) {
	c, w := newTestContext()
	RespondWithNotFound(c, "entry", "123")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "entry not found: 123") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{library.ErrRunInProgress, http.StatusConflict},
		{fmt.Errorf("failed to load entry x: %w", database.ErrNotFound), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		c, w := newTestContext()
		RespondWithServiceError(c, tt.err)
		if w.Code != tt.want {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.want, w.Code)
		}
	}
}
