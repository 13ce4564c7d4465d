package handlers

import (
	"net/http"
)

// AuthURL handles GET /api/auth/url: the interactive authorization URL for
// first-time setup without a refresh token.
func (h *Handlers) AuthURL(w http.ResponseWriter, r *http.Request) {
	if h.catalog.Authenticated() {
		respondJSON(w, http.StatusOK, map[string]string{"status": "already authenticated"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": h.catalog.AuthURL("plsync")})
}

// AuthCallback handles GET /api/auth/callback: the OAuth redirect target.
// On success the poll loop starts.
func (h *Handlers) AuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code query parameter is required")
		return
	}

	if err := h.catalog.ExchangeCode(r.Context(), code); err != nil {
		respondError(w, http.StatusBadGateway, "authorization failed: "+err.Error())
		return
	}

	if h.onAuthenticated != nil {
		h.onAuthenticated()
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}
