package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/sv4u/plsync/sync"
)

// SyncTrigger handles POST /api/sync. The pass runs in the background;
// a pass already in flight yields 409.
func (h *Handlers) SyncTrigger(w http.ResponseWriter, r *http.Request) {
	if h.service.Status().Syncing {
		respondError(w, http.StatusConflict, "a sync is already in flight")
		return
	}

	go func() {
		if _, err := h.service.SyncOnce(context.Background()); err != nil {
			if errors.Is(err, sync.ErrSyncInFlight) {
				return
			}
			log.Printf("ERROR: manual_sync_failed error=%v", err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sync started"})
}

// RetryTrigger handles POST /api/retry. Reprocesses previously failed
// tracks still present in the playlist.
func (h *Handlers) RetryTrigger(w http.ResponseWriter, r *http.Request) {
	if h.service.Status().Syncing {
		respondError(w, http.StatusConflict, "a sync is already in flight")
		return
	}

	go func() {
		if _, err := h.service.RetryFailed(context.Background()); err != nil {
			if errors.Is(err, sync.ErrSyncInFlight) {
				return
			}
			log.Printf("ERROR: manual_retry_failed error=%v", err)
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "retry started"})
}
