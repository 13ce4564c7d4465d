package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sv4u/plsync/sync/fetch"
)

// DownloadInfo handles GET /api/download/info: preview of a source URL
// (?url=) or of the top search result for a query (?query=), without
// downloading.
func (h *Handlers) DownloadInfo(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	query := r.URL.Query().Get("query")
	if url == "" && query == "" {
		respondError(w, http.StatusBadRequest, "url or query parameter is required")
		return
	}

	var candidate *fetch.Candidate
	var err error
	if url != "" {
		candidate, err = h.inspector.ExtractInfo(r.Context(), url)
	} else {
		candidate, err = h.downloader.PreviewInfo(r.Context(), query)
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to extract info: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"title":     candidate.Title,
		"uploader":  candidate.Uploader,
		"duration":  candidate.Duration,
		"url":       candidate.WebpageURL,
		"thumbnail": candidate.Thumbnail,
		"has_audio": candidate.HasAudio(),
	})
}

// downloadRequest is the POST /api/download body.
type downloadRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Download handles POST /api/download: direct-URL download into the
// archive, outside the playlist flow.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	path, err := h.downloader.DownloadURL(r.Context(), req.URL, req.Filename)
	if err != nil {
		respondError(w, http.StatusBadGateway, "download failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "downloaded",
		"path":   path,
	})
}
