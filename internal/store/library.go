package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/domain"
)

// Column counts per entity, used to derive chunk sizes that keep
// chunkSize * columns under the SQLite bind-parameter ceiling.
const (
	songColumns   = 11
	albumColumns  = 3
	artistColumns = 2
	refColumns    = 2
)

func chunkSize(columns int) int {
	return constants.MaxSQLVars / columns
}

// PersistBatch writes one merged entity batch inside a single transaction.
// Entity types are written in dependency order, each in its own chunked pass;
// any failed chunk rolls back the whole batch.
func (db *DB) PersistBatch(ctx context.Context, songs []domain.Song, albums []domain.Album, artists []domain.Artist, refs []domain.SongArtistRef) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertAlbums(ctx, tx, albums); err != nil {
		return err
	}
	if err := insertArtists(ctx, tx, artists); err != nil {
		return err
	}
	if err := insertSongs(ctx, tx, songs); err != nil {
		return err
	}
	if err := insertRefs(ctx, tx, refs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist tx: %w", err)
	}
	return nil
}

func insertSongs(ctx context.Context, tx *sqlx.Tx, songs []domain.Song) error {
	size := chunkSize(songColumns)
	for start := 0; start < len(songs); start += size {
		end := min(start+size, len(songs))
		chunk := songs[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*songColumns)
		now := time.Now()
		for _, s := range chunk {
			placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, s.ID, s.Title, s.Path, s.AlbumID, s.TrackNo, s.DurationMS,
				s.MimeType, s.Bitrate, s.SampleRate, s.ArtRef, now)
		}

		query := `INSERT INTO songs (id, title, path, album_id, track_no, duration_ms, mime_type, bitrate, sample_rate, art_ref, updated_at)
			VALUES ` + strings.Join(placeholders, ", ") + `
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				path = excluded.path,
				album_id = excluded.album_id,
				track_no = excluded.track_no,
				duration_ms = excluded.duration_ms,
				mime_type = excluded.mime_type,
				bitrate = excluded.bitrate,
				sample_rate = excluded.sample_rate,
				art_ref = excluded.art_ref,
				updated_at = excluded.updated_at`

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert songs chunk [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func insertAlbums(ctx context.Context, tx *sqlx.Tx, albums []domain.Album) error {
	size := chunkSize(albumColumns)
	for start := 0; start < len(albums); start += size {
		end := min(start+size, len(albums))
		chunk := albums[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*albumColumns)
		for _, a := range chunk {
			placeholders = append(placeholders, "(?, ?, ?)")
			args = append(args, a.ID, a.Title, a.Artist)
		}

		query := `INSERT INTO albums (id, title, artist) VALUES ` + strings.Join(placeholders, ", ") + `
			ON CONFLICT(id) DO UPDATE SET title = excluded.title, artist = excluded.artist`

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert albums chunk [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func insertArtists(ctx context.Context, tx *sqlx.Tx, artists []domain.Artist) error {
	size := chunkSize(artistColumns)
	for start := 0; start < len(artists); start += size {
		end := min(start+size, len(artists))
		chunk := artists[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*artistColumns)
		for _, a := range chunk {
			placeholders = append(placeholders, "(?, ?)")
			args = append(args, a.ID, a.Name)
		}

		query := `INSERT INTO artists (id, name) VALUES ` + strings.Join(placeholders, ", ") + `
			ON CONFLICT(id) DO UPDATE SET name = excluded.name
			ON CONFLICT(name) DO NOTHING`

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert artists chunk [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

func insertRefs(ctx context.Context, tx *sqlx.Tx, refs []domain.SongArtistRef) error {
	size := chunkSize(refColumns)
	for start := 0; start < len(refs); start += size {
		end := min(start+size, len(refs))
		chunk := refs[start:end]

		placeholders := make([]string, 0, len(chunk))
		args := make([]any, 0, len(chunk)*refColumns)
		for _, r := range chunk {
			placeholders = append(placeholders, "(?, ?)")
			args = append(args, r.SongID, r.ArtistID)
		}

		query := `INSERT INTO song_artists (song_id, artist_id) VALUES ` + strings.Join(placeholders, ", ") + `
			ON CONFLICT(song_id, artist_id) DO NOTHING`

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert refs chunk [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// ArtistIDByName resolves an artist id by display name, case-insensitively.
func (db *DB) ArtistIDByName(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := db.GetContext(ctx, &id, "SELECT id FROM artists WHERE name = ? COLLATE NOCASE", name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// AlbumIDByKey resolves an album id by its (title, primary artist) identity.
func (db *DB) AlbumIDByKey(ctx context.Context, title, artist string) (int64, bool, error) {
	var id int64
	err := db.GetContext(ctx, &id, "SELECT id FROM albums WHERE title = ? AND artist = ? COLLATE NOCASE", title, artist)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// StoredAudioMeta returns the persisted audio properties for a song.
func (db *DB) StoredAudioMeta(ctx context.Context, songID int64) (domain.AudioMeta, bool, error) {
	var meta domain.AudioMeta
	err := db.GetContext(ctx, &meta, "SELECT mime_type, bitrate, sample_rate FROM songs WHERE id = ?", songID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AudioMeta{}, false, nil
	}
	if err != nil {
		return domain.AudioMeta{}, false, err
	}
	return meta, true, nil
}

// GetAudioMetaBySongID is the collaborator-facing audio metadata lookup; it
// returns nil when the song is unknown.
func (db *DB) GetAudioMetaBySongID(ctx context.Context, songID int64) (*domain.AudioMeta, error) {
	meta, found, err := db.StoredAudioMeta(ctx, songID)
	if err != nil || !found {
		return nil, err
	}
	return &meta, nil
}

// StoredArtRef returns the persisted artwork reference for a song, if any.
func (db *DB) StoredArtRef(ctx context.Context, songID int64) (string, bool, error) {
	var ref sql.NullString
	err := db.GetContext(ctx, &ref, "SELECT art_ref FROM songs WHERE id = ?", songID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !ref.Valid || ref.String == "" {
		return "", false, nil
	}
	return ref.String, true, nil
}

// MaxArtistID returns the highest artist id in the store (0 when empty).
func (db *DB) MaxArtistID(ctx context.Context) (int64, error) {
	var id int64
	err := db.GetContext(ctx, &id, "SELECT COALESCE(MAX(id), 0) FROM artists")
	return id, err
}

// MaxAlbumID returns the highest album id in the store (0 when empty).
func (db *DB) MaxAlbumID(ctx context.Context) (int64, error) {
	var id int64
	err := db.GetContext(ctx, &id, "SELECT COALESCE(MAX(id), 0) FROM albums")
	return id, err
}

// ListSongs returns songs ordered by album and track number.
func (db *DB) ListSongs(ctx context.Context, limit, offset int) ([]domain.Song, error) {
	songs := []domain.Song{}
	err := db.SelectContext(ctx, &songs,
		"SELECT * FROM songs ORDER BY album_id, track_no, title LIMIT ? OFFSET ?", limit, offset)
	return songs, err
}

// ListAlbums returns albums ordered by title.
func (db *DB) ListAlbums(ctx context.Context, limit, offset int) ([]domain.Album, error) {
	albums := []domain.Album{}
	err := db.SelectContext(ctx, &albums,
		"SELECT * FROM albums ORDER BY title LIMIT ? OFFSET ?", limit, offset)
	return albums, err
}

// ListArtists returns artists ordered by name.
func (db *DB) ListArtists(ctx context.Context, limit, offset int) ([]domain.Artist, error) {
	artists := []domain.Artist{}
	err := db.SelectContext(ctx, &artists,
		"SELECT * FROM artists ORDER BY name LIMIT ? OFFSET ?", limit, offset)
	return artists, err
}

// ArtistIDsBySong returns the artist ids referenced by a song.
func (db *DB) ArtistIDsBySong(ctx context.Context, songID int64) ([]int64, error) {
	ids := []int64{}
	err := db.SelectContext(ctx, &ids,
		"SELECT artist_id FROM song_artists WHERE song_id = ? ORDER BY artist_id", songID)
	return ids, err
}

// CountRefs returns the total number of song/artist cross-references.
func (db *DB) CountRefs(ctx context.Context) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM song_artists")
	return n, err
}
