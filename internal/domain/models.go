package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// FileRecord is a raw entry from the media catalog: one audio file with
// whatever tags its container reported. Records live only within one sync pass.
type FileRecord struct {
	ID         int64  // stable across scans for the same path
	Path       string
	ParentPath string
	Title      string
	RawArtist  string // unsplit artist tag, possibly multi-valued
	Album      string
	TrackNo    int
	DurationMS int64
	Meta       AudioMeta // enriched during deep scan; zero value otherwise
	ArtRef     string    // artwork reference, if extracted
}

// FallbackTitle returns the tag title or, when the tag is empty, the file's
// base name without extension.
func (r FileRecord) FallbackTitle() string {
	if strings.TrimSpace(r.Title) != "" {
		return strings.TrimSpace(r.Title)
	}
	base := filepath.Base(r.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Song is the canonical per-file entity. A song references exactly one album;
// its artists are attached through SongArtistRef rows.
type Song struct {
	ID         int64     `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Path       string    `json:"path" db:"path"`
	AlbumID    int64     `json:"album_id" db:"album_id"`
	TrackNo    int       `json:"track_no" db:"track_no"`
	DurationMS int64     `json:"duration_ms" db:"duration_ms"`
	MimeType   *string   `json:"mime_type,omitempty" db:"mime_type"`
	Bitrate    *int64    `json:"bitrate,omitempty" db:"bitrate"`
	SampleRate *int64    `json:"sample_rate,omitempty" db:"sample_rate"`
	ArtRef     *string   `json:"art_ref,omitempty" db:"art_ref"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Album aggregates songs sharing the same album identity
// (title plus primary-artist heuristic).
type Album struct {
	ID     int64  `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Artist string `json:"artist" db:"artist"`
}

// Artist is a canonical artist with a display name unique per batch.
type Artist struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// SongArtistRef joins songs to artists many-to-many. A given pair appears at
// most once per batch.
type SongArtistRef struct {
	SongID   int64 `json:"song_id" db:"song_id"`
	ArtistID int64 `json:"artist_id" db:"artist_id"`
}

// AudioMeta holds probed audio properties. Bitrate is bits per second and
// SampleRate is Hz; either may be unknown.
type AudioMeta struct {
	MimeType   *string `json:"mime_type" db:"mime_type"`
	Bitrate    *int64  `json:"bitrate" db:"bitrate"`
	SampleRate *int64  `json:"sample_rate" db:"sample_rate"`
}

// Complete reports whether all three fields are known.
func (m AudioMeta) Complete() bool {
	return m.MimeType != nil && m.Bitrate != nil && m.SampleRate != nil
}

// Preferences is the snapshot of user configuration taken at sync start.
type Preferences struct {
	BlockedDirs []string
	AllowedDirs []string
	DeepScan    bool
}
