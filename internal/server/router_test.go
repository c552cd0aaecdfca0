package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nalesh18/Collaborative-Canvas/internal/rooms"
	"github.com/gin-gonic/gin"
)

func newTestHandler(t *testing.T, staticDir string) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub, err := NewHub(HubConfig{Directory: rooms.NewDirectory()})
	if err != nil {
		t.Fatalf("failed to build hub: %v", err)
	}
	handler, err := NewHTTPHandler(Dependencies{Hub: hub, StaticDir: staticDir})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t, "")

	request := httptest.NewRequest(http.MethodGet, "/_health", http.NoBody)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	if recorder.Body.String() != "ok" {
		t.Fatalf("expected body ok, got %q", recorder.Body.String())
	}
}

func TestHandlerRequiresHub(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if _, err := NewHTTPHandler(Dependencies{}); err == nil {
		t.Fatal("expected error for missing hub dependency")
	}
}

func TestStaticServingWhenConfigured(t *testing.T) {
	staticDir := t.TempDir()
	indexPath := filepath.Join(staticDir, "index.html")
	if err := os.WriteFile(indexPath, []byte("<html>canvas</html>"), 0o644); err != nil {
		t.Fatalf("failed to write index: %v", err)
	}
	handler := newTestHandler(t, staticDir)

	request := httptest.NewRequest(http.MethodGet, "/index.html", http.NoBody)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	if recorder.Body.String() != "<html>canvas</html>" {
		t.Fatalf("unexpected body %q", recorder.Body.String())
	}
}
