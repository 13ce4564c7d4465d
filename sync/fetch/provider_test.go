package fetch

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewProvider(t *testing.T) {
	p := NewProvider(&Config{
		Timeout:           time.Minute,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Second,
	})

	if p == nil {
		t.Fatal("NewProvider() returned nil")
	}
	if p.timeout != time.Minute {
		t.Errorf("expected timeout 1m, got %v", p.timeout)
	}
}

func TestCandidateHasAudio(t *testing.T) {
	tests := []struct {
		name     string
		formats  []Format
		expected bool
	}{
		{"audio format present", []Format{{FormatID: "140", Acodec: "mp4a.40.2"}}, true},
		{"video only", []Format{{FormatID: "137", Acodec: "none"}}, false},
		{"mixed formats", []Format{{Acodec: "none"}, {Acodec: "opus"}}, true},
		{"no formats", nil, false},
		{"empty acodec", []Format{{FormatID: "0", Acodec: ""}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Candidate{Formats: tt.formats}
			if got := c.HasAudio(); got != tt.expected {
				t.Errorf("HasAudio() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestCandidateParsing(t *testing.T) {
	// Shape of a yt-dlp --dump-json line, reduced to the fields we read.
	raw := `{
		"title": "Artist - Song (Official Video)",
		"webpage_url": "https://www.youtube.com/watch?v=abc123",
		"uploader": "ArtistVEVO",
		"duration": 215.0,
		"formats": [
			{"format_id": "137", "acodec": "none", "ext": "mp4"},
			{"format_id": "140", "acodec": "mp4a.40.2", "ext": "m4a"}
		]
	}`

	var candidate Candidate
	if err := json.Unmarshal([]byte(raw), &candidate); err != nil {
		t.Fatalf("failed to parse candidate: %v", err)
	}

	if candidate.Title != "Artist - Song (Official Video)" {
		t.Errorf("unexpected title: %q", candidate.Title)
	}
	if candidate.WebpageURL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("unexpected URL: %q", candidate.WebpageURL)
	}
	if candidate.Uploader != "ArtistVEVO" {
		t.Errorf("unexpected uploader: %q", candidate.Uploader)
	}
	if candidate.Duration != 215.0 {
		t.Errorf("unexpected duration: %v", candidate.Duration)
	}
	if !candidate.HasAudio() {
		t.Error("candidate with an m4a format should report audio")
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		output   string
		expected bool
	}{
		{"ERROR: HTTP Error 429: Too Many Requests", true},
		{"rate limit exceeded", true},
		{"ERROR: Video unavailable", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isRateLimited(tt.output); got != tt.expected {
			t.Errorf("isRateLimited(%q) = %v, expected %v", tt.output, got, tt.expected)
		}
	}
}
