package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

func TestEmbedMissingFile(t *testing.T) {
	embedder := NewEmbedder()
	err := embedder.Embed(filepath.Join(t.TempDir(), "nope.mp3"), "A", "T", "AL")
	var metaErr *MetadataError
	if !errors.As(err, &metaErr) {
		t.Fatalf("Embed() error = %v, want MetadataError", err)
	}
}

func TestEmbedSkipsNonMP3(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.webm")
	if err := os.WriteFile(path, []byte("webm data"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	embedder := NewEmbedder()
	if err := embedder.Embed(path, "Artist", "Title", "Album"); err != nil {
		t.Fatalf("Embed() error = %v, want nil for unsupported format", err)
	}

	// File untouched.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to re-read file: %v", err)
	}
	if string(data) != "webm data" {
		t.Error("unsupported file was modified")
	}
}

func TestEmbedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.mp3")
	// Minimal untagged mp3 payload; the tag is prepended on save.
	if err := os.WriteFile(path, []byte{0xFF, 0xFB, 0x90, 0x00}, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	embedder := NewEmbedder()
	if err := embedder.Embed(path, "Some Artist", "Some Title", "Some Album"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to reopen tagged file: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "Some Title" {
		t.Errorf("Title() = %q", tag.Title())
	}
	if tag.Artist() != "Some Artist" {
		t.Errorf("Artist() = %q", tag.Artist())
	}
	if tag.Album() != "Some Album" {
		t.Errorf("Album() = %q", tag.Album())
	}
}
