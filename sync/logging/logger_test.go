package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readEntries(t *testing.T, path string) []LogEntry {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %q is not valid JSON: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, err := NewLogger(path, "sync-engine")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("engine started")
	logger.Warnf("slow response: %dms", 1500)
	logger.ErrorWithOperation("sync", "playlist fetch failed", os.ErrDeadlineExceeded)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := readEntries(t, path)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	if entries[0].Level != LogLevelInfo || entries[0].Message != "engine started" {
		t.Errorf("entry[0] = %+v", entries[0])
	}
	if entries[0].Service != "sync-engine" {
		t.Errorf("Service = %q", entries[0].Service)
	}
	if entries[1].Level != LogLevelWarn || entries[1].Message != "slow response: 1500ms" {
		t.Errorf("entry[1] = %+v", entries[1])
	}
	if entries[2].Operation != "sync" || entries[2].Error == "" {
		t.Errorf("entry[2] = %+v", entries[2])
	}
	if entries[2].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")

	for i := 0; i < 2; i++ {
		logger, err := NewLogger(path, "sync-engine")
		if err != nil {
			t.Fatalf("NewLogger() error = %v", err)
		}
		logger.Info("pass")
		logger.Close()
	}

	if got := len(readEntries(t, path)); got != 2 {
		t.Errorf("got %d entries after two runs, want 2", got)
	}
}
