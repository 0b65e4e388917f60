// Package merge collapses raw per-file records into canonical Song, Album,
// Artist and cross-reference entities, splitting multi-artist tags and
// reusing identities already known to the backend store.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/domain"
)

// artistSeparators are the multi-value tag conventions recognized when
// splitting a raw artist string.
var artistSeparators = []string{";", "/", "&", ","}

// featMarkers introduce a guest artist inside a single tag value.
var featMarkers = []string{" feat. ", " feat ", " ft. ", " ft "}

// Lookup resolves identities and metadata already persisted by the backend
// store. Implementations must match artist names case-insensitively.
type Lookup interface {
	ArtistIDByName(ctx context.Context, name string) (int64, bool, error)
	AlbumIDByKey(ctx context.Context, title, artist string) (int64, bool, error)
	StoredAudioMeta(ctx context.Context, songID int64) (domain.AudioMeta, bool, error)
	StoredArtRef(ctx context.Context, songID int64) (string, bool, error)
	MaxArtistID(ctx context.Context) (int64, error)
	MaxAlbumID(ctx context.Context) (int64, error)
}

// Result is one batch of canonical entities ready for chunked persistence.
// Every cross-reference points at a song and artist present in the same batch
// or already persisted.
type Result struct {
	Songs   []domain.Song
	Albums  []domain.Album
	Artists []domain.Artist
	Refs    []domain.SongArtistRef
}

// Merger deduplicates one enriched record set per sync pass.
type Merger struct {
	lookup Lookup
}

func NewMerger(lookup Lookup) *Merger {
	return &Merger{lookup: lookup}
}

// Merge builds canonical entities from records. Ids for artists and albums
// are reused from the store when the identity already exists there and minted
// past the store's current maximum otherwise, so two consecutive syncs over
// an unchanged source produce identical entity sets.
func (m *Merger) Merge(ctx context.Context, records []domain.FileRecord) (Result, error) {
	nextArtistID, err := m.lookup.MaxArtistID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed artist ids: %w", err)
	}
	nextAlbumID, err := m.lookup.MaxAlbumID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("seed album ids: %w", err)
	}

	result := Result{
		Songs: make([]domain.Song, 0, len(records)),
	}

	// name (case-folded) -> id, sized for the usual distinct-artist share
	artistIDs := make(map[string]int64, len(records)/4+1)
	albumIDs := make(map[string]int64, len(records)/4+1)
	refSeen := make(map[domain.SongArtistRef]struct{}, len(records))

	resolveArtist := func(name string) (int64, error) {
		folded := strings.ToLower(name)
		if id, ok := artistIDs[folded]; ok {
			return id, nil
		}
		id, found, lookupErr := m.lookup.ArtistIDByName(ctx, name)
		if lookupErr != nil {
			return 0, fmt.Errorf("resolve artist %q: %w", name, lookupErr)
		}
		if !found {
			nextArtistID++
			id = nextArtistID
		}
		result.Artists = append(result.Artists, domain.Artist{ID: id, Name: name})
		artistIDs[folded] = id
		return id, nil
	}

	for _, record := range records {
		names := SplitArtists(record.RawArtist)
		if len(names) == 0 {
			names = []string{constants.UnknownArtist}
		}
		primary := names[0]

		albumTitle := strings.TrimSpace(record.Album)
		if albumTitle == "" {
			albumTitle = constants.UnknownAlbum
		}

		// artist-aware key keeps same-titled albums by different artists apart
		albumKey := strings.ToLower(albumTitle) + "\x00" + strings.ToLower(primary)
		albumID, ok := albumIDs[albumKey]
		if !ok {
			id, found, lookupErr := m.lookup.AlbumIDByKey(ctx, albumTitle, primary)
			if lookupErr != nil {
				return Result{}, fmt.Errorf("resolve album %q: %w", albumTitle, lookupErr)
			}
			if !found {
				nextAlbumID++
				id = nextAlbumID
			}
			albumID = id
			albumIDs[albumKey] = albumID
			result.Albums = append(result.Albums, domain.Album{ID: albumID, Title: albumTitle, Artist: primary})
		}

		meta, artRef, mergeErr := m.preserveStored(ctx, record)
		if mergeErr != nil {
			return Result{}, mergeErr
		}

		song := domain.Song{
			ID:         record.ID,
			Title:      record.FallbackTitle(),
			Path:       record.Path,
			AlbumID:    albumID,
			TrackNo:    record.TrackNo,
			DurationMS: record.DurationMS,
			MimeType:   meta.MimeType,
			Bitrate:    meta.Bitrate,
			SampleRate: meta.SampleRate,
		}
		if artRef != "" {
			song.ArtRef = &artRef
		}
		result.Songs = append(result.Songs, song)

		for _, name := range names {
			artistID, resolveErr := resolveArtist(name)
			if resolveErr != nil {
				return Result{}, resolveErr
			}
			ref := domain.SongArtistRef{SongID: record.ID, ArtistID: artistID}
			if _, dup := refSeen[ref]; dup {
				continue
			}
			refSeen[ref] = struct{}{}
			result.Refs = append(result.Refs, ref)
		}
	}

	return result, nil
}

// preserveStored applies the metadata-preservation rule against any
// previously stored song: fresh non-null fields win, but a fresh null never
// erases stored data.
func (m *Merger) preserveStored(ctx context.Context, record domain.FileRecord) (domain.AudioMeta, string, error) {
	stored, found, err := m.lookup.StoredAudioMeta(ctx, record.ID)
	if err != nil {
		return domain.AudioMeta{}, "", fmt.Errorf("stored meta for song %d: %w", record.ID, err)
	}

	meta := record.Meta
	if found {
		meta = PreferStored(record.Meta, stored)
	}

	artRef := record.ArtRef
	if artRef == "" {
		if ref, ok, refErr := m.lookup.StoredArtRef(ctx, record.ID); refErr == nil && ok {
			artRef = ref
		}
	}
	return meta, artRef, nil
}

// PreferStored merges freshly-extracted properties with previously stored
// ones. A non-null fresh value always overrides; a null fresh value keeps the
// stored one, so a transient extraction failure cannot erase good data.
func PreferStored(fresh, stored domain.AudioMeta) domain.AudioMeta {
	out := fresh
	if out.MimeType == nil {
		out.MimeType = stored.MimeType
	}
	if out.Bitrate == nil {
		out.Bitrate = stored.Bitrate
	}
	if out.SampleRate == nil {
		out.SampleRate = stored.SampleRate
	}
	return out
}

// SplitArtists breaks a raw artist tag into individual artist names using the
// recognized separator conventions. Names are trimmed and deduplicated
// case-insensitively, preserving first-seen order and casing.
func SplitArtists(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	parts := []string{trimmed}
	for _, sep := range artistSeparators {
		parts = splitAll(parts, sep)
	}
	for _, marker := range featMarkers {
		parts = splitAllFold(parts, marker)
	}

	seen := make(map[string]struct{}, len(parts))
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		folded := strings.ToLower(name)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		names = append(names, name)
	}
	return names
}

func splitAll(parts []string, sep string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.Split(part, sep)...)
	}
	return out
}

// splitAllFold splits on sep case-insensitively (for "feat."-style markers).
func splitAllFold(parts []string, sep string) []string {
	lowerSep := strings.ToLower(sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		rest := part
		for {
			idx := strings.Index(strings.ToLower(rest), lowerSep)
			if idx < 0 {
				out = append(out, rest)
				break
			}
			out = append(out, rest[:idx])
			rest = rest[idx+len(sep):]
		}
	}
	return out
}
