// Package library manages the local audio archive directory.
package library

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

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

// Stats describes the archive contents.
type Stats struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// Manager owns one archive directory.
type Manager struct {
	dir string
}

// NewManager creates the archive directory if needed.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the archive directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// Stats counts audio files and their total size.
func (m *Manager) Stats() (Stats, error) {
	var stats Stats
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return stats, fmt.Errorf("failed to read archive directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.Files++
		stats.Bytes += info.Size()
	}
	return stats, nil
}

// CleanupOldFiles keeps the newest maxFiles audio files and deletes the
// rest. Returns how many files were removed.
func (m *Manager) CleanupOldFiles(maxFiles int) (int, error) {
	if maxFiles < 1 {
		return 0, fmt.Errorf("maxFiles must be positive, got %d", maxFiles)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read archive directory: %w", err)
	}

	type archiveFile struct {
		path    string
		modTime int64
	}
	files := make([]archiveFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, archiveFile{
			path:    filepath.Join(m.dir, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(files) <= maxFiles {
		return 0, nil
	}

	// Newest first; everything past maxFiles goes.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime > files[j].modTime
	})

	removed := 0
	for _, file := range files[maxFiles:] {
		if err := os.Remove(file.path); err != nil {
			log.Printf("WARN: cleanup_remove_failed path=%s error=%v", file.path, err)
			continue
		}
		removed++
	}
	log.Printf("INFO: cleanup_completed dir=%s removed=%d kept=%d", m.dir, removed, maxFiles)
	return removed, nil
}
