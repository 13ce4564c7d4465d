package fetch

import "fmt"

// SearchError represents a media search error.
type SearchError struct {
	Message  string
	Original error
}

func (e *SearchError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("media search error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("media search error: %s", e.Message)
}

func (e *SearchError) Unwrap() error {
	return e.Original
}

// DownloadError represents a media download error.
type DownloadError struct {
	Message     string
	RateLimited bool
	Original    error
}

func (e *DownloadError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("media download error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("media download error: %s", e.Message)
}

func (e *DownloadError) Unwrap() error {
	return e.Original
}
