// Package metadata embeds ID3v2 tags into archived mp3 files.
package metadata

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// MetadataError represents a tagging failure.
type MetadataError struct {
	Message  string
	Original error
}

func (e *MetadataError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Original)
	}
	return e.Message
}

func (e *MetadataError) Unwrap() error {
	return e.Original
}

// Embedder writes artist/title/album frames into mp3 files.
type Embedder struct{}

func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Embed tags the file at path. Non-mp3 files are skipped with a warning,
// not an error.
func (e *Embedder) Embed(path, artist, title, album string) error {
	if _, err := os.Stat(path); err != nil {
		return &MetadataError{
			Message:  fmt.Sprintf("File not found: %s", path),
			Original: err,
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mp3" {
		log.Printf("WARN: metadata_embed_unsupported_format file=%s format=%s", path, ext)
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		tag, err = id3v2.Open(path, id3v2.Options{Parse: false})
		if err != nil {
			return &MetadataError{
				Message:  fmt.Sprintf("Failed to open MP3 file: %s", path),
				Original: err,
			}
		}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(title)
	tag.SetArtist(artist)
	if album != "" {
		tag.SetAlbum(album)
	}

	if err := tag.Save(); err != nil {
		return &MetadataError{
			Message:  "Failed to save MP3 metadata",
			Original: err,
		}
	}

	log.Printf("INFO: metadata_embed_complete file=%s title=%q artist=%q", path, title, artist)
	return nil
}
