// Package catalog is a Spotify Web API client scoped to the engine's needs:
// listing a playlist, removing items from it, and reading its metadata.
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	pageLimit = 100
)

// Playlist modification requires a user-scoped token; client credentials
// cannot remove items.
var requiredScopes = []string{
	"playlist-read-private",
	"playlist-modify-private",
	"playlist-modify-public",
}

// Config holds configuration for the catalog client.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// RefreshToken allows headless operation without an interactive login.
	RefreshToken string
	// AccessToken is accepted directly, mostly for tests and short runs.
	AccessToken string

	// TokenCachePath is where the opaque auth token is persisted. This is
	// the engine's only persisted state.
	TokenCachePath string

	// BaseURL overrides the API endpoint (tests). Empty means production.
	BaseURL string

	// RequestTimeout bounds each API call. Zero disables the bound.
	RequestTimeout time.Duration

	// Rate limiting for outgoing API calls.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Client talks to the Spotify Web API on behalf of one authorized user.
type Client struct {
	oauthConfig *oauth2.Config
	tokenPath   string
	baseURL     string
	timeout     time.Duration
	limiter     *rate.Limiter

	httpClient *http.Client
}

// NewClient creates an unauthenticated client. Call Authenticate before any
// API operation.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, &AuthError{Message: "missing client_id or client_secret"}
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/api/auth/callback"
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       requiredScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
		limiter = rate.NewLimiter(
			rate.Every(cfg.RateLimitWindow/time.Duration(cfg.RateLimitRequests)),
			cfg.RateLimitRequests,
		)
	}

	client := &Client{
		oauthConfig: oauthConfig,
		tokenPath:   cfg.TokenCachePath,
		baseURL:     baseURL,
		timeout:     cfg.RequestTimeout,
		limiter:     limiter,
	}

	// Pre-supplied tokens let Authenticate succeed without a login flow.
	if cfg.AccessToken != "" {
		client.installToken(context.Background(), &oauth2.Token{AccessToken: cfg.AccessToken})
	} else if cfg.RefreshToken != "" {
		client.installToken(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}

	return client, nil
}

// installToken builds the authenticated HTTP client around token, with
// refreshed tokens persisted to the cache file.
func (c *Client) installToken(ctx context.Context, token *oauth2.Token) {
	source := newCachingTokenSource(c.oauthConfig.TokenSource(ctx, token), c.tokenPath)
	c.httpClient = oauth2.NewClient(ctx, source)
}

// Authenticate establishes a session. Order: token already installed from
// config, then the persisted token cache. With neither, it fails and the
// operator must complete the AuthURL flow.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.httpClient != nil {
		return nil
	}

	token, err := loadCachedToken(c.tokenPath)
	if err != nil {
		return &AuthError{Message: "failed to read token cache", Original: err}
	}
	if token == nil {
		return &AuthError{Message: "no cached token; authorize via the auth URL or provide a refresh token"}
	}

	c.installToken(ctx, token)
	return nil
}

// Authenticated reports whether a session is established.
func (c *Client) Authenticated() bool {
	return c.httpClient != nil
}

// AuthURL returns the interactive authorization URL for the configured app.
func (c *Client) AuthURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades an authorization code for a token, persists it, and
// establishes the session.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return &AuthError{Message: "failed to exchange auth code", Original: err}
	}
	if c.tokenPath != "" {
		if err := saveToken(c.tokenPath, token); err != nil {
			return &AuthError{Message: "failed to persist token", Original: err}
		}
	}
	c.installToken(ctx, token)
	return nil
}

// doRequest performs an authenticated API request and decodes the response
// into result when non-nil.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result interface{}) error {
	if c.httpClient == nil {
		return &AuthError{Message: "not authenticated: call Authenticate first"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Message: fmt.Sprintf("credentials rejected: status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RateLimitError{RetryAfter: retryAfter}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Message: string(snippet)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ListTracks fetches the full playlist, following pagination. Null and
// local items are skipped; they have no downloadable counterpart.
func (c *Client) ListTracks(ctx context.Context, playlistID string) ([]Track, error) {
	tracks := make([]Track, 0)
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d",
			url.PathEscape(playlistID), pageLimit, offset)

		var page apiPagedTracks
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" || item.Track.IsLocal {
				continue
			}
			tracks = append(tracks, toTrack(item))
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += pageLimit
	}

	return tracks, nil
}

// RemoveTrack deletes all occurrences of the item identified by removalURI
// from the playlist.
func (c *Client) RemoveTrack(ctx context.Context, playlistID, removalURI string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string]interface{}{
		"tracks": []map[string]string{{"uri": removalURI}},
	}
	return c.doRequest(ctx, http.MethodDelete, endpoint, body, nil)
}

// PlaylistInfo fetches name, owner, size and visibility of the playlist.
func (c *Client) PlaylistInfo(ctx context.Context, playlistID string) (*PlaylistInfo, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var playlist apiPlaylist
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return nil, err
	}

	return &PlaylistInfo{
		Name:        playlist.Name,
		Description: playlist.Description,
		Owner:       playlist.Owner.DisplayName,
		TotalTracks: playlist.Tracks.Total,
		Public:      playlist.Public,
		URL:         playlist.ExternalURLs.Spotify,
	}, nil
}

func toTrack(item apiPlaylistItem) Track {
	artists := make([]string, 0, len(item.Track.Artists))
	for _, a := range item.Track.Artists {
		artists = append(artists, a.Name)
	}

	addedAt, _ := time.Parse(time.RFC3339, item.AddedAt)

	return Track{
		ID:         item.Track.ID,
		Title:      item.Track.Name,
		Artists:    artists,
		Album:      item.Track.Album.Name,
		DurationMS: item.Track.DurationMS,
		AddedAt:    addedAt,
		RemovalURI: item.Track.URI,
	}
}
