package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sv4u/plsync/control/handlers"
	engine "github.com/sv4u/plsync/sync"
	"github.com/sv4u/plsync/sync/catalog"
	"github.com/sv4u/plsync/sync/library"
)

func TestSecondsDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    time.Duration
	}{
		{2, 2 * time.Second},
		{0.5, 500 * time.Millisecond},
		{0, 0},
	}
	for _, tt := range tests {
		if got := secondsDuration(tt.seconds); got != tt.want {
			t.Errorf("secondsDuration(%v) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

type stubService struct{}

func (stubService) SyncOnce(ctx context.Context) (engine.SyncStats, error) {
	return engine.SyncStats{}, nil
}

func (stubService) RetryFailed(ctx context.Context) (engine.SyncStats, error) {
	return engine.SyncStats{}, nil
}

func (stubService) Status() engine.Status { return engine.Status{} }

type stubCatalog struct{}

func (stubCatalog) Authenticated() bool { return true }

func (stubCatalog) AuthURL(state string) string { return "https://accounts.example/authorize" }

func (stubCatalog) ExchangeCode(ctx context.Context, code string) error { return nil }

func (stubCatalog) ListTracks(ctx context.Context, playlistID string) ([]catalog.Track, error) {
	return nil, nil
}

func (stubCatalog) PlaylistInfo(ctx context.Context, playlistID string) (*catalog.PlaylistInfo, error) {
	return &catalog.PlaylistInfo{Name: "stub"}, nil
}

type stubArchive struct{}

func (stubArchive) Stats() (library.Stats, error) { return library.Stats{}, nil }

func (stubArchive) CleanupOldFiles(maxFiles int) (int, error) { return 0, nil }

func newStubServer() *Server {
	h := handlers.NewHandlers(handlers.Deps{
		Service:   stubService{},
		Catalog:   stubCatalog{},
		Archive:   stubArchive{},
		StartTime: time.Now(),
	})
	return NewServer(0, h, NewEventBroadcaster())
}

func TestRoutes(t *testing.T) {
	server := newStubServer()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/api/health", http.StatusOK},
		{"GET", "/api/status", http.StatusOK},
		{"GET", "/api/playlist/info", http.StatusOK},
		{"GET", "/api/playlist/tracks", http.StatusOK},
		{"POST", "/api/sync", http.StatusAccepted},
		{"POST", "/api/retry", http.StatusAccepted},
		{"POST", "/api/cleanup", http.StatusOK},
		{"GET", "/api/config", http.StatusOK},
		{"GET", "/api/nope", http.StatusNotFound},
		{"DELETE", "/api/sync", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
}
