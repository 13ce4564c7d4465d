package catalog

import "time"

// Track is an immutable snapshot of one playlist item, fetched per poll and
// discarded after processing.
type Track struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artists    []string  `json:"artists"`
	Album      string    `json:"album"`
	DurationMS int       `json:"duration_ms"`
	AddedAt    time.Time `json:"added_at"`
	RemovalURI string    `json:"-"` // spotify:track:<id>, used to delete the item
}

// ArtistList joins the artist names for display and filenames.
func (t *Track) ArtistList() string {
	out := ""
	for i, a := range t.Artists {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// PlaylistInfo is the metadata of the configured playlist.
type PlaylistInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TotalTracks int    `json:"total_tracks"`
	Public      bool   `json:"public"`
	URL         string `json:"url"`
}

// Spotify Web API response shapes, reduced to the fields the engine reads.

type apiArtist struct {
	Name string `json:"name"`
}

type apiAlbum struct {
	Name string `json:"name"`
}

type apiTrack struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	URI        string      `json:"uri"`
	DurationMS int         `json:"duration_ms"`
	IsLocal    bool        `json:"is_local"`
	Artists    []apiArtist `json:"artists"`
	Album      apiAlbum    `json:"album"`
}

type apiPlaylistItem struct {
	AddedAt string    `json:"added_at"`
	Track   *apiTrack `json:"track"`
}

type apiPagedTracks struct {
	Items []apiPlaylistItem `json:"items"`
	Next  *string           `json:"next"`
	Total int               `json:"total"`
}

type apiPlaylist struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Owner       struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}
