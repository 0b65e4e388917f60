package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/avilaroman/cadenza/internal/logger"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not real audio"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	return path
}

func TestFSProvider_EnumerateSkipsUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rock/01 - Song.mp3")
	writeFile(t, dir, "rock/song.flac")
	writeFile(t, dir, "rock/cover.jpg")
	writeFile(t, dir, "notes.txt")

	provider := NewFSProvider([]string{dir}, logger.Default())
	records, err := provider.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	for _, r := range records {
		if r.ID <= 0 {
			t.Errorf("record %s has non-positive id %d", r.Path, r.ID)
		}
		if r.ParentPath != filepath.Join(dir, "rock") {
			t.Errorf("record %s has parent %s", r.Path, r.ParentPath)
		}
	}
}

func TestFSProvider_FilenameFallback(t *testing.T) {
	dir := t.TempDir()
	// tag read fails on the garbage payload, so the name carries the metadata
	writeFile(t, dir, "01 - Opening Theme.mp3")

	provider := NewFSProvider([]string{dir}, logger.Default())
	records, err := provider.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].TrackNo != 1 {
		t.Errorf("TrackNo = %d, want 1", records[0].TrackNo)
	}
	if records[0].Title != "Opening Theme" {
		t.Errorf("Title = %q, want %q", records[0].Title, "Opening Theme")
	}
	if records[0].RawArtist != "" || records[0].Album != "" {
		t.Errorf("fallback should leave artist/album empty: %+v", records[0])
	}
}

func TestFSProvider_EnumerateMissingDirYieldsNothing(t *testing.T) {
	dir := t.TempDir()
	provider := NewFSProvider([]string{filepath.Join(dir, "nope")}, logger.Default())
	records, err := provider.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestStableID(t *testing.T) {
	a := StableID("/music/a.mp3")
	if a <= 0 {
		t.Fatalf("id = %d, want positive", a)
	}
	if b := StableID("/music/a.mp3"); b != a {
		t.Errorf("same path produced different ids: %d vs %d", a, b)
	}
	if b := StableID("/music/b.mp3"); b == a {
		t.Errorf("different paths produced the same id: %d", a)
	}
}

func TestParseTrackPrefix(t *testing.T) {
	tests := []struct {
		in        string
		wantNo    int
		wantTitle string
	}{
		{"01 - Song", 1, "Song"},
		{"12.Another One", 12, "Another One"},
		{"3_Title", 3, "Title"},
		{"Song Without Prefix", 0, "Song Without Prefix"},
		{"2024 Remaster", 0, "2024 Remaster"},
		{"00 - Zero", 0, "00 - Zero"},
	}
	for _, tt := range tests {
		no, title := parseTrackPrefix(tt.in)
		if no != tt.wantNo || title != tt.wantTitle {
			t.Errorf("parseTrackPrefix(%q) = %d, %q; want %d, %q", tt.in, no, title, tt.wantNo, tt.wantTitle)
		}
	}
}
