package handlers

import (
	"net/http"

	"github.com/sv4u/plsync/sync/catalog"
)

// PlaylistInfo handles GET /api/playlist/info.
func (h *Handlers) PlaylistInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.catalog.PlaylistInfo(r.Context(), h.playlistID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch playlist info: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// PlaylistTracks handles GET /api/playlist/tracks.
func (h *Handlers) PlaylistTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalog.ListTracks(r.Context(), h.playlistID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch playlist tracks: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":  len(tracks),
		"tracks": tracks,
	})
}

// PlaylistNew handles GET /api/playlist/new: tracks the engine has not
// handled yet.
func (h *Handlers) PlaylistNew(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalog.ListTracks(r.Context(), h.playlistID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch playlist tracks: "+err.Error())
		return
	}

	pending := make([]catalog.Track, 0)
	for _, track := range tracks {
		if h.pending.IsPending(track.ID) {
			pending = append(pending, track)
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":  len(pending),
		"tracks": pending,
	})
}
