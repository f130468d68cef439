package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tracewire/tracewire/pkg/cache"
)

const serveDoc = `
[connectors.A]
pins = ["1"]
[connectors.B]
pins = ["1"]
[cables.W]
colors = ["RD"]

[[connections]]
from = "A:1"
via = "W:1"
to = "B:1"
`

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return newServeHandler(c, newLogger(io.Discard, log.InfoLevel))
}

func TestServeHealthz(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}
}

func TestServeRenderGV(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/render?format=gv", strings.NewReader(serveDoc))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("first render should miss, got %q", rec.Header().Get("X-Cache"))
	}
	if !strings.Contains(rec.Body.String(), "graph {") {
		t.Error("body is not DOT text")
	}

	// Second identical request hits the cache.
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/render?format=gv", strings.NewReader(serveDoc)))
	if rec2.Header().Get("X-Cache") != "hit" {
		t.Errorf("second render should hit, got %q", rec2.Header().Get("X-Cache"))
	}
	if !bytes.Equal(rec2.Body.Bytes(), rec.Body.Bytes()) {
		t.Error("cached body differs from rendered body")
	}
}

func TestServeRenderBOM(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/render?format=bom", strings.NewReader(serveDoc))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "#\tDescription") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeRenderErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"bad format", "/render?format=bmp", serveDoc, http.StatusBadRequest},
		{"bad toml", "/render?format=gv", "connectors = [", http.StatusUnprocessableEntity},
		{"unknown cable", "/render?format=gv", "[[connections]]\nfrom = \"A:1\"\nvia = \"W:1\"\n", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "given-id" {
		t.Errorf("request ID = %q, want given-id", got)
	}
}
