// Package handlers implements the HTTP handlers for the operator surface.
package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/sv4u/plsync/sync"
	"github.com/sv4u/plsync/sync/catalog"
	"github.com/sv4u/plsync/sync/fetch"
	"github.com/sv4u/plsync/sync/library"
)

// SyncService is the orchestrator surface the handlers drive.
type SyncService interface {
	SyncOnce(ctx context.Context) (sync.SyncStats, error)
	RetryFailed(ctx context.Context) (sync.SyncStats, error)
	Status() sync.Status
}

// PlaylistCatalog is the playlist read and auth surface.
type PlaylistCatalog interface {
	Authenticated() bool
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) error
	ListTracks(ctx context.Context, playlistID string) ([]catalog.Track, error)
	PlaylistInfo(ctx context.Context, playlistID string) (*catalog.PlaylistInfo, error)
}

// Downloader is the direct-download and preview surface.
type Downloader interface {
	DownloadURL(ctx context.Context, url, preferredName string) (string, error)
	PreviewInfo(ctx context.Context, query string) (*fetch.Candidate, error)
}

// MediaInspector previews a URL without downloading.
type MediaInspector interface {
	ExtractInfo(ctx context.Context, url string) (*fetch.Candidate, error)
}

// Archive is the local archive surface.
type Archive interface {
	Stats() (library.Stats, error)
	CleanupOldFiles(maxFiles int) (int, error)
}

// PendingChecker reports whether a track id still needs handling.
type PendingChecker interface {
	IsPending(id string) bool
}

// ConfigView is the redacted configuration exposed over the API. Secrets
// never appear here.
type ConfigView struct {
	PlaylistID          string  `json:"playlist_id"`
	PollIntervalMinutes int     `json:"poll_interval_minutes"`
	DownloadPath        string  `json:"download_path"`
	MaxArchiveFiles     int     `json:"max_archive_files"`
	TrackDelay          float64 `json:"track_delay"`
	ServerPort          int     `json:"server_port"`
}

// Handlers holds all HTTP handlers for the operator surface.
type Handlers struct {
	service    SyncService
	catalog    PlaylistCatalog
	downloader Downloader
	inspector  MediaInspector
	archive    Archive
	pending    PendingChecker

	playlistID      string
	maxArchiveFiles int
	configView      ConfigView
	startTime       time.Time
	version         string
	onAuthenticated func()
}

// Deps are the collaborators a Handlers needs.
type Deps struct {
	Service    SyncService
	Catalog    PlaylistCatalog
	Downloader Downloader
	Inspector  MediaInspector
	Archive    Archive
	Pending    PendingChecker

	PlaylistID      string
	MaxArchiveFiles int
	ConfigView      ConfigView
	StartTime       time.Time
	Version         string

	// OnAuthenticated runs after a successful interactive authorization.
	OnAuthenticated func()
}

// NewHandlers creates a new handlers instance.
func NewHandlers(deps Deps) *Handlers {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handlers{
		service:         deps.Service,
		catalog:         deps.Catalog,
		downloader:      deps.Downloader,
		inspector:       deps.Inspector,
		archive:         deps.Archive,
		pending:         deps.Pending,
		playlistID:      deps.PlaylistID,
		maxArchiveFiles: deps.MaxArchiveFiles,
		configView:      deps.ConfigView,
		startTime:       deps.StartTime,
		version:         version,
		onAuthenticated: deps.OnAuthenticated,
	}
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: response_encode_failed error=%v", err)
	}
}

// respondError writes a JSON error body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
