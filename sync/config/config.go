package config

import (
	"fmt"
	"strings"
)

// ConfigError represents a configuration error. It is fatal at startup.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// SpotifySettings holds Spotify API credentials and auth settings.
type SpotifySettings struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`

	// RefreshToken enables headless startup without the interactive
	// authorization flow.
	RefreshToken string `yaml:"refresh_token"`

	// TokenCachePath is where the auth token is persisted between runs.
	TokenCachePath string `yaml:"token_cache_path"`

	// Rate limiting for Spotify API calls
	RateLimitRequests int     `yaml:"rate_limit_requests"`
	RateLimitWindow   float64 `yaml:"rate_limit_window"` // seconds

	RequestTimeout float64 `yaml:"request_timeout"` // seconds
}

// SetDefaults sets default values for SpotifySettings.
func (s *SpotifySettings) SetDefaults() {
	if s.RedirectURI == "" {
		s.RedirectURI = "http://localhost:8080/api/auth/callback"
	}
	if s.TokenCachePath == "" {
		s.TokenCachePath = ".spotify_token.json"
	}
	if s.RateLimitRequests == 0 {
		s.RateLimitRequests = 10
	}
	if s.RateLimitWindow == 0 {
		s.RateLimitWindow = 1.0
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = 30.0
	}
}

// Validate validates SpotifySettings.
func (s *SpotifySettings) Validate() error {
	s.ClientID = strings.TrimSpace(s.ClientID)
	s.ClientSecret = strings.TrimSpace(s.ClientSecret)

	missing := []string{}
	if s.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if s.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return &ConfigError{
			Message: fmt.Sprintf(
				"Missing Spotify %s. Provide spotify.client_id and spotify.client_secret in the configuration file or via SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET",
				strings.Join(missing, " and "),
			),
		}
	}
	return nil
}

// SyncSettings holds playlist monitoring and download configuration.
type SyncSettings struct {
	PlaylistID string `yaml:"playlist_id"`

	PollIntervalMinutes int    `yaml:"poll_interval_minutes"`
	DownloadPath        string `yaml:"download_path"`

	// MaxArchiveFiles bounds the archive; cleanup keeps the newest N.
	MaxArchiveFiles int `yaml:"max_archive_files"`

	// TrackDelay is the pause between consecutive track downloads in
	// seconds.
	TrackDelay float64 `yaml:"track_delay"`

	// SearchTimeout and DownloadTimeout bound yt-dlp invocations, in
	// seconds.
	SearchTimeout   float64 `yaml:"search_timeout"`
	DownloadTimeout float64 `yaml:"download_timeout"`

	// Rate limiting for download requests
	RateLimitRequests int     `yaml:"rate_limit_requests"`
	RateLimitWindow   float64 `yaml:"rate_limit_window"` // seconds

	// Registry capacities
	ProcessedCapacity int `yaml:"processed_capacity"`
	FailedCapacity    int `yaml:"failed_capacity"`
}

// SetDefaults sets default values for SyncSettings.
func (s *SyncSettings) SetDefaults() {
	if s.PollIntervalMinutes == 0 {
		s.PollIntervalMinutes = 10
	}
	if s.DownloadPath == "" {
		s.DownloadPath = "./downloads"
	}
	if s.MaxArchiveFiles == 0 {
		s.MaxArchiveFiles = 500
	}
	if s.TrackDelay == 0 {
		s.TrackDelay = 2.0
	}
	if s.SearchTimeout == 0 {
		s.SearchTimeout = 60.0
	}
	if s.DownloadTimeout == 0 {
		s.DownloadTimeout = 600.0
	}
	if s.RateLimitRequests == 0 {
		s.RateLimitRequests = 2
	}
	if s.RateLimitWindow == 0 {
		s.RateLimitWindow = 1.0
	}
	if s.ProcessedCapacity == 0 {
		s.ProcessedCapacity = 1000
	}
	if s.FailedCapacity == 0 {
		s.FailedCapacity = 100
	}
}

// Validate validates SyncSettings.
func (s *SyncSettings) Validate() error {
	s.PlaylistID = strings.TrimSpace(s.PlaylistID)
	if s.PlaylistID == "" {
		return &ConfigError{
			Message: "Missing playlist id. Provide sync.playlist_id in the configuration file",
		}
	}
	if s.PollIntervalMinutes < 1 {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid poll_interval_minutes: %d. Must be at least 1", s.PollIntervalMinutes),
		}
	}
	if s.MaxArchiveFiles < 1 {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid max_archive_files: %d. Must be at least 1", s.MaxArchiveFiles),
		}
	}
	return nil
}

// ServerSettings holds the operator HTTP server configuration.
type ServerSettings struct {
	Port    int    `yaml:"port"`
	LogPath string `yaml:"log_path"`
}

// SetDefaults sets default values for ServerSettings.
func (s *ServerSettings) SetDefaults() {
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.LogPath == "" {
		s.LogPath = "./logs"
	}
}

// Validate validates ServerSettings.
func (s *ServerSettings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid server port: %d", s.Port),
		}
	}
	return nil
}

// Config represents the main configuration model.
type Config struct {
	Spotify SpotifySettings `yaml:"spotify"`
	Sync    SyncSettings    `yaml:"sync"`
	Server  ServerSettings  `yaml:"server"`
}

// Validate sets defaults, then validates every section.
func (c *Config) Validate() error {
	c.Spotify.SetDefaults()
	c.Sync.SetDefaults()
	c.Server.SetDefaults()

	if err := c.Spotify.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}
