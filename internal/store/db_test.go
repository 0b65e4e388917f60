package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/avilaroman/cadenza/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func TestDB_PersistBatchRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mime := "audio/flac"
	bitrate := int64(900000)
	rate := int64(44100)

	songs := []domain.Song{{
		ID: 1, Title: "One", Path: "/music/one.flac", AlbumID: 10, TrackNo: 1,
		DurationMS: 180000, MimeType: &mime, Bitrate: &bitrate, SampleRate: &rate,
	}}
	albums := []domain.Album{{ID: 10, Title: "Duets", Artist: "Alice"}}
	artists := []domain.Artist{{ID: 100, Name: "Alice"}, {ID: 101, Name: "Bob"}}
	refs := []domain.SongArtistRef{{SongID: 1, ArtistID: 100}, {SongID: 1, ArtistID: 101}}

	if err := db.PersistBatch(ctx, songs, albums, artists, refs); err != nil {
		t.Fatalf("PersistBatch failed: %v", err)
	}

	gotSongs, err := db.ListSongs(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(gotSongs) != 1 {
		t.Fatalf("expected 1 song, got %d", len(gotSongs))
	}
	if gotSongs[0].Title != "One" || gotSongs[0].AlbumID != 10 {
		t.Errorf("unexpected song: %+v", gotSongs[0])
	}
	if gotSongs[0].Bitrate == nil || *gotSongs[0].Bitrate != 900000 {
		t.Errorf("bitrate not persisted: %v", gotSongs[0].Bitrate)
	}

	ids, err := db.ArtistIDsBySong(ctx, 1)
	if err != nil {
		t.Fatalf("ArtistIDsBySong failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 100 || ids[1] != 101 {
		t.Errorf("unexpected artist refs: %v", ids)
	}
}

func TestDB_PersistBatchIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	songs := []domain.Song{{ID: 1, Title: "One", Path: "/a.mp3", AlbumID: 10}}
	albums := []domain.Album{{ID: 10, Title: "Solo", Artist: "Alice"}}
	artists := []domain.Artist{{ID: 100, Name: "Alice"}}
	refs := []domain.SongArtistRef{{SongID: 1, ArtistID: 100}}

	for i := 0; i < 2; i++ {
		if err := db.PersistBatch(ctx, songs, albums, artists, refs); err != nil {
			t.Fatalf("PersistBatch run %d failed: %v", i+1, err)
		}
	}

	count, err := db.CountRefs(ctx)
	if err != nil {
		t.Fatalf("CountRefs failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 cross-ref after two identical syncs, got %d", count)
	}

	gotArtists, err := db.ListArtists(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListArtists failed: %v", err)
	}
	if len(gotArtists) != 1 {
		t.Errorf("expected 1 artist after two identical syncs, got %d", len(gotArtists))
	}
}

func TestDB_PersistBatchChunksLargeSets(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// more artists than fit in one statement under the parameter ceiling
	n := chunkSize(artistColumns)*2 + 7
	artists := make([]domain.Artist, 0, n)
	for i := 0; i < n; i++ {
		artists = append(artists, domain.Artist{ID: int64(i + 1), Name: fmt.Sprintf("Artist %04d", i)})
	}

	if err := db.PersistBatch(ctx, nil, nil, artists, nil); err != nil {
		t.Fatalf("PersistBatch failed: %v", err)
	}

	got, err := db.ListArtists(ctx, n+10, 0)
	if err != nil {
		t.Fatalf("ListArtists failed: %v", err)
	}
	if len(got) != n {
		t.Errorf("expected %d artists, got %d", n, len(got))
	}
}

func TestDB_ArtistIDByNameIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.PersistBatch(ctx, nil, nil, []domain.Artist{{ID: 5, Name: "Alice"}}, nil); err != nil {
		t.Fatalf("PersistBatch failed: %v", err)
	}

	id, found, err := db.ArtistIDByName(ctx, "ALICE")
	if err != nil {
		t.Fatalf("ArtistIDByName failed: %v", err)
	}
	if !found || id != 5 {
		t.Errorf("expected id 5 for ALICE, got %d (found=%v)", id, found)
	}

	_, found, err = db.ArtistIDByName(ctx, "Nobody")
	if err != nil {
		t.Fatalf("ArtistIDByName failed: %v", err)
	}
	if found {
		t.Error("expected Nobody to be absent")
	}
}

func TestDB_StoredAudioMeta(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	meta, found, err := db.StoredAudioMeta(ctx, 404)
	if err != nil {
		t.Fatalf("StoredAudioMeta failed: %v", err)
	}
	if found {
		t.Errorf("expected no meta for unknown song, got %+v", meta)
	}

	mime := "audio/mpeg"
	songs := []domain.Song{{ID: 1, Title: "One", Path: "/a.mp3", AlbumID: 1, MimeType: &mime}}
	if err := db.PersistBatch(ctx, songs, nil, nil, nil); err != nil {
		t.Fatalf("PersistBatch failed: %v", err)
	}

	meta, found, err = db.StoredAudioMeta(ctx, 1)
	if err != nil {
		t.Fatalf("StoredAudioMeta failed: %v", err)
	}
	if !found || meta.MimeType == nil || *meta.MimeType != mime {
		t.Errorf("unexpected meta: %+v (found=%v)", meta, found)
	}
	if meta.Bitrate != nil {
		t.Errorf("expected null bitrate, got %v", *meta.Bitrate)
	}

	// collaborator-facing lookup returns nil for unknown songs
	ptr, err := db.GetAudioMetaBySongID(ctx, 404)
	if err != nil {
		t.Fatalf("GetAudioMetaBySongID failed: %v", err)
	}
	if ptr != nil {
		t.Errorf("expected nil for unknown song, got %+v", ptr)
	}
}

func TestDB_MaxIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.MaxArtistID(ctx)
	if err != nil || id != 0 {
		t.Fatalf("MaxArtistID on empty store = %d, %v; want 0, nil", id, err)
	}

	artists := []domain.Artist{{ID: 3, Name: "A"}, {ID: 9, Name: "B"}}
	albums := []domain.Album{{ID: 12, Title: "T", Artist: "A"}}
	if err := db.PersistBatch(ctx, nil, albums, artists, nil); err != nil {
		t.Fatalf("PersistBatch failed: %v", err)
	}

	if id, _ = db.MaxArtistID(ctx); id != 9 {
		t.Errorf("MaxArtistID = %d, want 9", id)
	}
	if id, _ = db.MaxAlbumID(ctx); id != 12 {
		t.Errorf("MaxAlbumID = %d, want 12", id)
	}
}

func TestDB_SyncRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := &domain.SyncRun{
		ID:        "run-1",
		State:     domain.SyncEnumerating,
		DeepScan:  true,
		StartedAt: time.Now(),
	}
	if err := db.CreateSyncRun(ctx, run); err != nil {
		t.Fatalf("CreateSyncRun failed: %v", err)
	}

	run.State = domain.SyncDone
	run.FilesSeen = 3
	run.Persisted = 1
	if err := db.UpdateSyncRun(ctx, run); err != nil {
		t.Fatalf("UpdateSyncRun failed: %v", err)
	}
	if run.FinishedAt == nil {
		t.Error("terminal state should set FinishedAt")
	}

	runs, err := db.ListSyncRuns(ctx, 5)
	if err != nil {
		t.Fatalf("ListSyncRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].State != domain.SyncDone || runs[0].FilesSeen != 3 {
		t.Errorf("unexpected run: %+v", runs[0])
	}

	missing := &domain.SyncRun{ID: "ghost", State: domain.SyncDone}
	if err := db.UpdateSyncRun(ctx, missing); err == nil {
		t.Error("expected error updating unknown run")
	}
}

func TestSettingsRepo_Preferences(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	prefs, err := repo.Preferences()
	if err != nil {
		t.Fatalf("Preferences on empty store failed: %v", err)
	}
	if prefs.DeepScan || len(prefs.BlockedDirs) != 0 || len(prefs.AllowedDirs) != 0 {
		t.Errorf("expected zero preferences, got %+v", prefs)
	}

	want := domain.Preferences{
		BlockedDirs: []string{"/music/podcasts"},
		AllowedDirs: []string{"/music"},
		DeepScan:    true,
	}
	if err := repo.SetPreferences(want); err != nil {
		t.Fatalf("SetPreferences failed: %v", err)
	}

	got, err := repo.Preferences()
	if err != nil {
		t.Fatalf("Preferences failed: %v", err)
	}
	if !got.DeepScan {
		t.Error("deep scan flag lost")
	}
	if len(got.BlockedDirs) != 1 || got.BlockedDirs[0] != "/music/podcasts" {
		t.Errorf("blocked dirs mismatch: %v", got.BlockedDirs)
	}
	if len(got.AllowedDirs) != 1 || got.AllowedDirs[0] != "/music" {
		t.Errorf("allowed dirs mismatch: %v", got.AllowedDirs)
	}
}

func TestSettingsRepo_GetSetDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepo(db)

	if v, err := repo.Get("missing"); err != nil || v != "" {
		t.Fatalf("Get missing = %q, %v; want empty, nil", v, err)
	}

	if err := repo.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set("key", "value2"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	if v, _ := repo.Get("key"); v != "value2" {
		t.Errorf("Get = %q, want value2", v)
	}

	if err := repo.Delete("key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if v, _ := repo.Get("key"); v != "" {
		t.Errorf("expected key gone, got %q", v)
	}
}
