package sync

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extensions yt-dlp leaves behind that are never the audio artifact.
var deniedExtensions = map[string]bool{
	".mhtml": true,
	".html":  true,
	".htm":   true,
	".part":  true,
	".tmp":   true,
	".ytdl":  true,
}

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".webm": true,
	".opus": true,
	".aac":  true,
}

// recentWindow bounds the fallback: a non-audio file only counts as the
// artifact if it was written this recently.
const recentWindow = 60 * time.Second

// ResolveDownloadedFile finds the audio artifact a download attempt left in
// dir. Audio extensions win, newest modification time first; failing that,
// any non-denied file modified within the last minute. No match is a
// ResolutionError.
func ResolveDownloadedFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &ResolutionError{Dir: dir, Message: "failed to read directory: " + err.Error()}
	}

	var bestAudio, bestRecent string
	var bestAudioTime, bestRecentTime time.Time
	cutoff := time.Now().Add(-recentWindow)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if deniedExtensions[ext] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if audioExtensions[ext] {
			if info.ModTime().After(bestAudioTime) {
				bestAudio = path
				bestAudioTime = info.ModTime()
			}
			continue
		}
		if info.ModTime().After(cutoff) && info.ModTime().After(bestRecentTime) {
			bestRecent = path
			bestRecentTime = info.ModTime()
		}
	}

	if bestAudio != "" {
		return bestAudio, nil
	}
	if bestRecent != "" {
		return bestRecent, nil
	}
	return "", &ResolutionError{Dir: dir, Message: "no downloaded audio file found"}
}
