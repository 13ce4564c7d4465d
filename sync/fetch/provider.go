// Package fetch wraps the yt-dlp binary as the engine's media search and
// download primitive.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Format describes one available stream format of a candidate.
type Format struct {
	FormatID string `json:"format_id"`
	Acodec   string `json:"acodec"`
	Ext      string `json:"ext"`
}

// Candidate is the top search result for a query, or the metadata of a
// direct URL.
type Candidate struct {
	Title      string   `json:"title"`
	WebpageURL string   `json:"webpage_url"`
	Uploader   string   `json:"uploader"`
	Duration   float64  `json:"duration"`
	Thumbnail  string   `json:"thumbnail"`
	Formats    []Format `json:"formats"`
}

// HasAudio reports whether any of the candidate's formats carries an audio
// channel. Video-only results (and browser snapshot pages) fail this check.
func (c *Candidate) HasAudio() bool {
	for _, f := range c.Formats {
		if f.Acodec != "" && f.Acodec != "none" {
			return true
		}
	}
	return false
}

// Config holds configuration for the yt-dlp provider.
type Config struct {
	// Timeout bounds each yt-dlp invocation. Zero disables the bound.
	Timeout time.Duration

	// RateLimitRequests / RateLimitWindow throttle invocations.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Provider executes yt-dlp for search, download and info extraction.
type Provider struct {
	timeout   time.Duration
	limiter   *rate.Limiter
	hasFFmpeg bool
}

// NewProvider creates a provider, probing once for ffmpeg to decide whether
// downloads are converted to mp3.
func NewProvider(cfg *Config) *Provider {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimitRequests > 0 && cfg.RateLimitWindow > 0 {
		limiter = rate.NewLimiter(
			rate.Every(cfg.RateLimitWindow/time.Duration(cfg.RateLimitRequests)),
			cfg.RateLimitRequests,
		)
	}

	_, err := exec.LookPath("ffmpeg")
	hasFFmpeg := err == nil
	if hasFFmpeg {
		log.Printf("INFO: ffmpeg_found conversion=mp3")
	} else {
		log.Printf("INFO: ffmpeg_missing downloading original audio format")
	}

	return &Provider{
		timeout:   cfg.Timeout,
		limiter:   limiter,
		hasFFmpeg: hasFFmpeg,
	}
}

// bound applies the provider timeout to ctx.
func (p *Provider) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout > 0 {
		return context.WithTimeout(ctx, p.timeout)
	}
	return context.WithCancel(ctx)
}

// Search returns the top candidate for query, with its format list, without
// downloading. Returns (nil, nil) when the search yields no entries.
func (p *Provider) Search(ctx context.Context, query string) (*Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := p.bound(ctx)
	defer cancel()

	args := []string{
		"--quiet",
		"--no-warnings",
		"--skip-download",
		"--dump-json",
		"--user-agent", browserUserAgent,
		"ytsearch1:" + query,
	}

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		outputStr := string(output)
		if isRateLimited(outputStr) {
			return nil, &SearchError{Message: "rate limited by provider", Original: err}
		}
		// yt-dlp exits non-zero on an empty search result set too
		if strings.Contains(outputStr, "does not pass filter") || strings.TrimSpace(outputStr) == "" {
			return nil, nil
		}
		return nil, &SearchError{
			Message:  fmt.Sprintf("yt-dlp search failed: %v (output: %s)", err, strings.TrimSpace(outputStr)),
			Original: err,
		}
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, nil
	}

	var candidate Candidate
	if err := json.Unmarshal([]byte(lines[0]), &candidate); err != nil {
		return nil, &SearchError{Message: "failed to parse yt-dlp output", Original: err}
	}

	if candidate.WebpageURL == "" && candidate.Title == "" {
		return nil, nil
	}

	return &candidate, nil
}

// Download fetches the best audio stream of url into outputTemplate, which
// must carry a yt-dlp extension placeholder (the remote encoder picks the
// final extension). When ffmpeg is present the result is extracted to mp3
// at 192k, matching the archive's preferred format.
func (p *Provider) Download(ctx context.Context, url, outputTemplate string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, cancel := p.bound(ctx)
	defer cancel()

	args := []string{
		"--quiet",
		"--no-warnings",
		"--user-agent", browserUserAgent,
		"--retries", "3",
		"--fragment-retries", "3",
		"--output", outputTemplate,
	}

	if p.hasFFmpeg {
		args = append(args,
			"--format", "bestaudio[ext=m4a]/bestaudio/best",
			"--extract-audio",
			"--audio-format", "mp3",
			"--audio-quality", "192K",
		)
	} else {
		args = append(args, "--format", "bestaudio/best")
	}

	args = append(args, url)

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		outputStr := string(output)
		if isRateLimited(outputStr) {
			return &DownloadError{Message: "rate limited by provider", RateLimited: true, Original: err}
		}
		return &DownloadError{
			Message:  fmt.Sprintf("yt-dlp download failed: %v (output: %s)", err, strings.TrimSpace(outputStr)),
			Original: err,
		}
	}

	return nil
}

// ExtractInfo returns metadata for url without downloading.
func (p *Provider) ExtractInfo(ctx context.Context, url string) (*Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := p.bound(ctx)
	defer cancel()

	args := []string{
		"--quiet",
		"--no-warnings",
		"--skip-download",
		"--dump-json",
		"--no-playlist",
		"--user-agent", browserUserAgent,
		url,
	}

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &SearchError{
			Message:  fmt.Sprintf("yt-dlp info extraction failed: %v (output: %s)", err, strings.TrimSpace(string(output))),
			Original: err,
		}
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, &SearchError{Message: "no metadata from yt-dlp"}
	}

	var candidate Candidate
	if err := json.Unmarshal([]byte(lines[0]), &candidate); err != nil {
		return nil, &SearchError{Message: "failed to parse yt-dlp metadata output", Original: err}
	}

	return &candidate, nil
}

// isRateLimited checks yt-dlp output for rate limit indicators.
func isRateLimited(output string) bool {
	return strings.Contains(output, "429") ||
		strings.Contains(output, "rate limit") ||
		strings.Contains(output, "HTTP Error 429")
}
