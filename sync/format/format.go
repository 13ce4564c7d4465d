// Package format builds search queries and cleans titles and filenames for
// the sync engine.
package format

import (
	"regexp"
	"strings"
)

var (
	featPattern       = regexp.MustCompile(`(?i)\(feat\..*?\)`)
	ftPattern         = regexp.MustCompile(`(?i)\(ft\..*?\)`)
	bracketPattern    = regexp.MustCompile(`\[.*?\]`)
	remixPattern      = regexp.MustCompile(`(?i)\(.*?remix.*?\)`)
	specialPattern    = regexp.MustCompile(`[^\w\s-]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanString removes featuring annotations, bracketed annotations, remix
// annotations and special characters, then normalizes whitespace.
func CleanString(text string) string {
	if text == "" {
		return ""
	}

	text = featPattern.ReplaceAllString(text, "")
	text = ftPattern.ReplaceAllString(text, "")
	text = bracketPattern.ReplaceAllString(text, "")
	text = remixPattern.ReplaceAllString(text, "")
	text = specialPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// BuildSearchQuery formats a search query from track information. The album
// is appended only when its cleaned form differs from the cleaned title, so
// self-titled singles don't repeat themselves.
func BuildSearchQuery(artist, title, album string) string {
	artistClean := CleanString(artist)
	titleClean := CleanString(title)

	query := artistClean + " - " + titleClean

	if album != "" {
		albumClean := CleanString(album)
		if albumClean != titleClean {
			query += " " + albumClean
		}
	}

	return query
}

// titlePatterns is the ordered catalog of video-metadata annotations removed
// from display titles. Broad patterns come first so a superset match removes
// a specific one entirely.
var titlePatterns = []*regexp.Regexp{
	// Broad patterns that catch label variations
	regexp.MustCompile(`(?i)\[.*Official.*Music.*Video.*\]`),
	regexp.MustCompile(`(?i)\[.*Official.*Video.*\]`),
	regexp.MustCompile(`(?i)\[.*Music.*Video.*\]`),
	regexp.MustCompile(`(?i)\[.*Official.*Audio.*\]`),
	regexp.MustCompile(`(?i)\(.*Official.*Music.*Video.*\)`),
	regexp.MustCompile(`(?i)\(.*Official.*Video.*\)`),
	regexp.MustCompile(`(?i)\(.*Music.*Video.*\)`),
	regexp.MustCompile(`(?i)\(.*Official.*Audio.*\)`),

	// Specific common tags
	regexp.MustCompile(`(?i)\[Audio\]`),
	regexp.MustCompile(`(?i)\[Official\]`),
	regexp.MustCompile(`(?i)\[HD\]`),
	regexp.MustCompile(`(?i)\[4K\]`),
	regexp.MustCompile(`(?i)\[Lyric Video\]`),
	regexp.MustCompile(`(?i)\[Lyrics\]`),
	regexp.MustCompile(`(?i)\[Visualizer\]`),
	regexp.MustCompile(`(?i)\[Live\]`),
	regexp.MustCompile(`(?i)\[Acoustic\]`),
	regexp.MustCompile(`(?i)\[Remix\]`),
	regexp.MustCompile(`(?i)\[Extended Mix\]`),
	regexp.MustCompile(`(?i)\[Radio Edit\]`),
	regexp.MustCompile(`(?i)\(Audio\)`),
	regexp.MustCompile(`(?i)\(Official\)`),
	regexp.MustCompile(`(?i)\(HD\)`),
	regexp.MustCompile(`(?i)\(4K\)`),
	regexp.MustCompile(`(?i)\(Lyric Video\)`),
	regexp.MustCompile(`(?i)\(Lyrics\)`),
	regexp.MustCompile(`(?i)\(Visualizer\)`),
	regexp.MustCompile(`(?i)\(Live\)`),
	regexp.MustCompile(`(?i)\(Acoustic\)`),
	regexp.MustCompile(`(?i)\(Remix\)`),
	regexp.MustCompile(`(?i)\(Extended Mix\)`),
	regexp.MustCompile(`(?i)\(Radio Edit\)`),

	// Prefixes and stray separators
	regexp.MustCompile(`(?i)^Official\s*-\s*`),
	regexp.MustCompile(`(?i)^Official:\s*`),
	regexp.MustCompile(`\s*-\s*$`),
	regexp.MustCompile(`^\s*-\s*`),
}

var (
	doubleDashPattern = regexp.MustCompile(`\s*-\s*-\s*`)
	edgeDashPattern   = regexp.MustCompile(`^-\s*|\s*-$`)
)

// CleanDisplayTitle strips video-metadata annotations from a raw title.
// If stripping leaves fewer than 3 characters the original title is
// returned, so cleaning never produces a degenerate result.
func CleanDisplayTitle(title string) string {
	if title == "" {
		return "Unknown Track"
	}

	cleaned := title
	for _, pattern := range titlePatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	cleaned = doubleDashPattern.ReplaceAllString(cleaned, " - ")
	cleaned = edgeDashPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if len([]rune(cleaned)) < 3 {
		return strings.TrimSpace(title)
	}

	return cleaned
}

var (
	reservedPattern   = regexp.MustCompile(`[<>:"/\\|?*]`)
	underscorePattern = regexp.MustCompile(`_+`)
)

// SanitizeFilename replaces filesystem-reserved characters with underscores.
// The result is never empty.
func SanitizeFilename(name string) string {
	sanitized := reservedPattern.ReplaceAllString(name, "_")
	sanitized = underscorePattern.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "_")
	sanitized = strings.TrimSpace(sanitized)

	if sanitized == "" {
		return "unknown_file"
	}

	return sanitized
}
