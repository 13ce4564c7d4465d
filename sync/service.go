package sync

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	stdsync "sync"
	"time"

	"github.com/sv4u/plsync/sync/catalog"
	"github.com/sv4u/plsync/sync/format"
)

// defaultTrackDelay spaces consecutive downloads to stay friendly to the
// upstream services.
const defaultTrackDelay = 2 * time.Second

// PlaylistService is the remote playlist surface the orchestrator needs.
// Satisfied by catalog.Client.
type PlaylistService interface {
	ListTracks(ctx context.Context, playlistID string) ([]catalog.Track, error)
	RemoveTrack(ctx context.Context, playlistID, removalURI string) error
}

// TrackDownloader turns a query into an archived file. Satisfied by
// Pipeline.
type TrackDownloader interface {
	Download(ctx context.Context, query, preferredName string) (string, error)
}

// Tagger embeds metadata into a downloaded file. Satisfied by
// metadata.Embedder.
type Tagger interface {
	Embed(path, artist, title, album string) error
}

// SyncStats summarizes one sync pass. A fresh value is produced per call.
type SyncStats struct {
	New             int `json:"new"`
	Downloaded      int `json:"downloaded"`
	Failed          int `json:"failed"`
	RemovalFailures int `json:"removal_failures"`
}

// Status is a point-in-time view of the orchestrator for the operator
// surface.
type Status struct {
	PlaylistID string     `json:"playlist_id"`
	Syncing    bool       `json:"syncing"`
	Processed  int        `json:"processed_count"`
	FailedIDs  int        `json:"failed_count"`
	LastSyncAt time.Time  `json:"last_sync_at"`
	LastStats  *SyncStats `json:"last_stats,omitempty"`
}

// Event announces a sync lifecycle transition to interested listeners.
type Event struct {
	Type  string     `json:"type"`
	Stats *SyncStats `json:"stats,omitempty"`
}

// Service orchestrates one playlist's sync passes. At most one pass runs
// at a time; concurrent callers get ErrSyncInFlight.
type Service struct {
	playlist   PlaylistService
	downloader TrackDownloader
	registry   *Registry
	tagger     Tagger
	playlistID string
	trackDelay time.Duration

	mu        stdsync.Mutex
	busy      bool
	lastSync  time.Time
	lastStats *SyncStats
	notify    func(Event)
}

func NewService(playlist PlaylistService, downloader TrackDownloader, registry *Registry, playlistID string) *Service {
	return &Service{
		playlist:   playlist,
		downloader: downloader,
		registry:   registry,
		playlistID: playlistID,
		trackDelay: defaultTrackDelay,
	}
}

// SetTagger enables metadata embedding on downloaded mp3 files.
func (s *Service) SetTagger(tagger Tagger) { s.tagger = tagger }

// SetTrackDelay overrides the pause between consecutive tracks.
func (s *Service) SetTrackDelay(d time.Duration) { s.trackDelay = d }

// SetNotifier registers a listener for sync lifecycle events. The listener
// must not block.
func (s *Service) SetNotifier(notify func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = notify
}

func (s *Service) emit(event Event) {
	s.mu.Lock()
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		notify(event)
	}
}

// begin claims the single-flight slot.
func (s *Service) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrSyncInFlight
	}
	s.busy = true
	return nil
}

// end releases the slot and records the pass outcome.
func (s *Service) end(stats SyncStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.lastSync = time.Now()
	s.lastStats = &stats
}

// SyncOnce performs one full pass: list the playlist, download every track
// the registry has not seen, remove archived tracks from the playlist.
// Per-track failures become registry state and stats; only a playlist
// listing failure escapes as an error.
func (s *Service) SyncOnce(ctx context.Context) (SyncStats, error) {
	var stats SyncStats
	if err := s.begin(); err != nil {
		return stats, err
	}
	defer func() { s.end(stats) }()

	s.emit(Event{Type: "sync_started"})
	log.Printf("INFO: sync_started playlist=%s", s.playlistID)

	tracks, err := s.playlist.ListTracks(ctx, s.playlistID)
	if err != nil {
		log.Printf("ERROR: playlist_fetch_failed playlist=%s error=%v", s.playlistID, err)
		return stats, err
	}

	for _, track := range tracks {
		if !s.registry.IsPending(track.ID) {
			continue
		}
		stats.New++

		s.processTrack(ctx, track, &stats)

		if err := sleepContext(ctx, s.trackDelay); err != nil {
			return stats, err
		}
	}

	log.Printf("INFO: sync_completed playlist=%s new=%d downloaded=%d failed=%d removal_failures=%d",
		s.playlistID, stats.New, stats.Downloaded, stats.Failed, stats.RemovalFailures)
	statsCopy := stats
	s.emit(Event{Type: "sync_completed", Stats: &statsCopy})
	return stats, nil
}

// RetryFailed drains the failed set and reprocesses the ids still present
// in the live playlist. Ids no longer in the playlist are dropped.
func (s *Service) RetryFailed(ctx context.Context) (SyncStats, error) {
	var stats SyncStats
	if err := s.begin(); err != nil {
		return stats, err
	}
	defer func() { s.end(stats) }()

	ids := s.registry.RetryFailed()
	if len(ids) == 0 {
		log.Printf("INFO: retry_skipped playlist=%s reason=no_failed_tracks", s.playlistID)
		return stats, nil
	}

	tracks, err := s.playlist.ListTracks(ctx, s.playlistID)
	if err != nil {
		// Keep the drained ids retryable for next time.
		for _, id := range ids {
			s.registry.MarkFailed(id)
		}
		log.Printf("ERROR: playlist_fetch_failed playlist=%s error=%v", s.playlistID, err)
		return stats, err
	}

	byID := make(map[string]catalog.Track, len(tracks))
	for _, track := range tracks {
		byID[track.ID] = track
	}

	for _, id := range ids {
		track, ok := byID[id]
		if !ok {
			log.Printf("INFO: retry_dropped track=%s reason=not_in_playlist", id)
			continue
		}
		stats.New++

		s.processTrack(ctx, track, &stats)

		if err := sleepContext(ctx, s.trackDelay); err != nil {
			return stats, err
		}
	}

	log.Printf("INFO: retry_completed playlist=%s retried=%d downloaded=%d failed=%d",
		s.playlistID, stats.New, stats.Downloaded, stats.Failed)
	statsCopy := stats
	s.emit(Event{Type: "retry_completed", Stats: &statsCopy})
	return stats, nil
}

// processTrack runs one track through download, tagging, and playlist
// removal, updating the registry and stats.
func (s *Service) processTrack(ctx context.Context, track catalog.Track, stats *SyncStats) {
	artist := track.ArtistList()
	query := format.BuildSearchQuery(artist, track.Title, track.Album)
	preferred := artist + " - " + track.Title

	log.Printf("INFO: track_processing track=%s title=%q query=%q", track.ID, track.Title, query)

	path, err := s.downloader.Download(ctx, query, preferred)
	if err != nil {
		log.Printf("WARN: track_failed track=%s error=%v", track.ID, err)
		s.registry.MarkFailed(track.ID)
		stats.Failed++
		return
	}
	stats.Downloaded++

	if s.tagger != nil && strings.EqualFold(filepath.Ext(path), ".mp3") {
		if err := s.tagger.Embed(path, artist, track.Title, track.Album); err != nil {
			log.Printf("WARN: tagging_failed track=%s path=%s error=%v", track.ID, path, err)
		}
	}

	if err := s.playlist.RemoveTrack(ctx, s.playlistID, track.RemovalURI); err != nil {
		// The file is archived; the track must not be downloaded again.
		removalErr := &RemovalError{TrackID: track.ID, Original: err}
		log.Printf("WARN: playlist_removal_failed error=%v", removalErr)
		stats.RemovalFailures++
	}
	s.registry.MarkProcessed(track.ID)
	log.Printf("INFO: track_archived track=%s path=%s", track.ID, path)
}

// Status reports current orchestrator state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	processed, failed := s.registry.Counts()
	return Status{
		PlaylistID: s.playlistID,
		Syncing:    s.busy,
		Processed:  processed,
		FailedIDs:  failed,
		LastSyncAt: s.lastSync,
		LastStats:  s.lastStats,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
