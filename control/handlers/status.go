package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/sv4u/plsync/sync/library"
)

// Status handles GET /api/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status()

	archiveStats, err := h.archive.Stats()
	if err != nil {
		log.Printf("WARN: archive_stats_failed error=%v", err)
		archiveStats = library.Stats{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"playlist_id":    status.PlaylistID,
		"syncing":        status.Syncing,
		"processed":      status.Processed,
		"failed":         status.FailedIDs,
		"last_sync_at":   status.LastSyncAt,
		"last_stats":     status.LastStats,
		"archive":        archiveStats,
		"authenticated":  h.catalog.Authenticated(),
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}
