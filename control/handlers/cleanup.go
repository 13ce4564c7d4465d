package handlers

import (
	"net/http"
)

// Cleanup handles POST /api/cleanup: trims the archive to the configured
// size and reports before/after stats.
func (h *Handlers) Cleanup(w http.ResponseWriter, r *http.Request) {
	before, err := h.archive.Stats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read archive: "+err.Error())
		return
	}

	removed, err := h.archive.CleanupOldFiles(h.maxArchiveFiles)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "cleanup failed: "+err.Error())
		return
	}

	after, err := h.archive.Stats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read archive: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"removed": removed,
		"before":  before,
		"after":   after,
	})
}
