package handlers

import (
	"net/http"
	"time"
)

// Health handles GET /api/health. Reports unhealthy until the Spotify
// client has a session, since nothing can sync without one.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime).Seconds()

	if !h.catalog.Authenticated() {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":         "unhealthy",
			"reason":         "Spotify authentication pending",
			"uptime_seconds": uptime,
			"version":        h.version,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"reason":         "Server is responding",
		"uptime_seconds": uptime,
		"version":        h.version,
	})
}
