package sync

import (
	"errors"
	"fmt"
)

// ErrSyncInFlight is returned when a sync is requested while another sync is
// already running. The caller should retry later rather than queue.
var ErrSyncInFlight = errors.New("a sync is already in flight")

// SearchMissError reports that a query variant returned no usable
// audio-bearing candidate. The pipeline moves to the next variant.
type SearchMissError struct {
	Query   string
	Message string
}

func (e *SearchMissError) Error() string {
	return fmt.Sprintf("search miss for %q: %s", e.Query, e.Message)
}

// DownloadFailedError reports that every query variant was exhausted without
// producing a stored audio file.
type DownloadFailedError struct {
	Query    string
	Attempts int
	Original error
}

func (e *DownloadFailedError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("all %d download attempts failed for %q: %v", e.Attempts, e.Query, e.Original)
	}
	return fmt.Sprintf("all %d download attempts failed for %q", e.Attempts, e.Query)
}

func (e *DownloadFailedError) Unwrap() error {
	return e.Original
}

// ResolutionError reports that a download nominally completed but no output
// file could be identified on disk.
type ResolutionError struct {
	Dir     string
	Message string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("file resolution failed in %s: %s", e.Dir, e.Message)
}

// RemovalError reports that a track could not be deleted from the remote
// collection after a successful local download. Logged only; never fails
// the track.
type RemovalError struct {
	TrackID  string
	Original error
}

func (e *RemovalError) Error() string {
	return fmt.Sprintf("failed to remove track %s from playlist: %v", e.TrackID, e.Original)
}

func (e *RemovalError) Unwrap() error {
	return e.Original
}
