// Package artwork persists extracted cover art as content artifacts on disk
// and answers existence checks without re-extraction.
package artwork

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/avilaroman/cadenza/internal/filesystem"
)

// Store saves cover art bytes under a directory and hands out stable
// references (absolute file paths). It also keeps per-song "no art" marker
// files so the negative cache survives restarts.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := filesystem.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create artwork dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the image bytes for songID and returns the artifact reference.
// Any stale "no art" marker for the song is removed first.
func (s *Store) Save(songID int64, data []byte) (string, error) {
	s.ClearMarker(songID)

	path := s.artPath(songID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("write artwork for song %d: %w", songID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("store artwork for song %d: %w", songID, err)
	}
	return path, nil
}

// RefFor returns the existing artifact reference for songID, if one was
// previously persisted.
func (s *Store) RefFor(songID int64) (string, bool) {
	path := s.artPath(songID)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// MarkAbsent records on disk that songID has no extractable art.
func (s *Store) MarkAbsent(songID int64) {
	_ = os.WriteFile(s.markerPath(songID), nil, 0644)
}

// HasMarker reports whether songID carries a persisted "no art" marker.
func (s *Store) HasMarker(songID int64) bool {
	_, err := os.Stat(s.markerPath(songID))
	return err == nil
}

// ClearMarker removes the persisted "no art" marker for songID, if any.
func (s *Store) ClearMarker(songID int64) {
	_ = os.Remove(s.markerPath(songID))
}

func (s *Store) artPath(songID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.jpg", songID))
}

func (s *Store) markerPath(songID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.none", songID))
}
