package handlers

import (
	"net/http"
)

// ConfigGet handles GET /api/config. The view is read-only and excludes
// credentials.
func (h *Handlers) ConfigGet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.configView)
}
