package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sv4u/plsync/sync/fetch"
	"github.com/sv4u/plsync/sync/format"
)

// querySuffixes are tried in order until one yields a usable candidate.
// The plain query goes first; suffixes nudge the search toward uploads
// that actually carry audio.
var querySuffixes = []string{"", " audio", " official", " music"}

// MediaFetcher searches for and downloads audio. Satisfied by
// fetch.Provider.
type MediaFetcher interface {
	Search(ctx context.Context, query string) (*fetch.Candidate, error)
	Download(ctx context.Context, url, outputTemplate string) error
	ExtractInfo(ctx context.Context, url string) (*fetch.Candidate, error)
}

// Pipeline turns a search query into an audio file in the archive
// directory.
type Pipeline struct {
	fetcher    MediaFetcher
	archiveDir string
}

func NewPipeline(fetcher MediaFetcher, archiveDir string) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		archiveDir: archiveDir,
	}
}

// Download tries each query variant in order and returns the path of the
// archived file. preferredName, when non-empty, names the file; otherwise
// the candidate's cleaned title does. Exhausting all variants returns a
// DownloadFailedError wrapping the last per-variant error.
func (p *Pipeline) Download(ctx context.Context, query, preferredName string) (string, error) {
	var lastErr error

	for _, suffix := range querySuffixes {
		variant := query + suffix

		candidate, err := p.fetcher.Search(ctx, variant)
		if err != nil {
			log.Printf("WARN: search_failed query=%q error=%v", variant, err)
			lastErr = err
			continue
		}
		if candidate == nil {
			log.Printf("INFO: search_miss query=%q", variant)
			lastErr = &SearchMissError{Query: variant, Message: "no results"}
			continue
		}
		if !candidate.HasAudio() {
			log.Printf("INFO: candidate_no_audio query=%q title=%q", variant, candidate.Title)
			lastErr = &SearchMissError{Query: variant, Message: "top result has no audio format"}
			continue
		}

		path, err := p.fetchCandidate(ctx, candidate.WebpageURL, fileName(preferredName, candidate.Title))
		if err != nil {
			log.Printf("WARN: download_attempt_failed query=%q url=%s error=%v", variant, candidate.WebpageURL, err)
			lastErr = err
			continue
		}

		log.Printf("INFO: download_complete query=%q path=%s", variant, path)
		return path, nil
	}

	return "", &DownloadFailedError{
		Query:    query,
		Attempts: len(querySuffixes),
		Original: lastErr,
	}
}

// PreviewInfo returns metadata for the top search result without
// downloading anything.
func (p *Pipeline) PreviewInfo(ctx context.Context, query string) (*fetch.Candidate, error) {
	candidate, err := p.fetcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, &SearchMissError{Query: query, Message: "no results"}
	}
	return candidate, nil
}

// DownloadURL fetches a known URL directly, skipping the search step.
// The same audio validation and naming rules apply.
func (p *Pipeline) DownloadURL(ctx context.Context, url, preferredName string) (string, error) {
	candidate, err := p.fetcher.ExtractInfo(ctx, url)
	if err != nil {
		return "", err
	}
	if !candidate.HasAudio() {
		return "", &SearchMissError{Query: url, Message: "source has no audio format"}
	}

	path, err := p.fetchCandidate(ctx, url, fileName(preferredName, candidate.Title))
	if err != nil {
		return "", err
	}
	log.Printf("INFO: direct_download_complete url=%s path=%s", url, path)
	return path, nil
}

// fetchCandidate downloads url into a private staging directory, resolves
// the produced artifact, and moves it into the archive under name.
func (p *Pipeline) fetchCandidate(ctx context.Context, url, name string) (string, error) {
	staging := filepath.Join(p.archiveDir, ".staging-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	template := filepath.Join(staging, name+".%(ext)s")
	if err := p.fetcher.Download(ctx, url, template); err != nil {
		return "", err
	}

	artifact, err := ResolveDownloadedFile(staging)
	if err != nil {
		return "", err
	}

	final := filepath.Join(p.archiveDir, name+strings.ToLower(filepath.Ext(artifact)))
	if err := os.Rename(artifact, final); err != nil {
		return "", fmt.Errorf("failed to move %s into archive: %w", artifact, err)
	}
	return final, nil
}

// fileName picks the archive file name: the preferred name when given,
// otherwise the candidate's display-cleaned title. Always sanitized.
func fileName(preferred, candidateTitle string) string {
	name := preferred
	if name == "" {
		name = format.CleanDisplayTitle(candidateTitle)
	}
	return format.SanitizeFilename(name)
}
