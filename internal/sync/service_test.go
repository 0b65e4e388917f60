package sync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/avilaroman/cadenza/internal/app"
	"github.com/avilaroman/cadenza/internal/artwork"
	"github.com/avilaroman/cadenza/internal/batch"
	"github.com/avilaroman/cadenza/internal/catalog"
	"github.com/avilaroman/cadenza/internal/domain"
	"github.com/avilaroman/cadenza/internal/logger"
	"github.com/avilaroman/cadenza/internal/store"
	"github.com/avilaroman/cadenza/internal/tagging"
)

type prefsStub struct {
	prefs domain.Preferences
	err   error
}

func (p *prefsStub) Preferences() (domain.Preferences, error) {
	return p.prefs, p.err
}

type noPicture struct{}

func (noPicture) ExtractPicture(string) (tagging.Picture, error) {
	return tagging.Picture{}, tagging.ErrNoPicture
}

type emptyProps struct{}

func (emptyProps) ReadProperties(string) (domain.AudioMeta, error) {
	return domain.AudioMeta{}, nil
}

func newTestService(t *testing.T, provider catalog.Provider, prefs *prefsStub) (*Service, *store.DB) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	artStore, err := artwork.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create artwork store: %v", err)
	}
	log := logger.Default()
	art := app.NewArtResolver(noPicture{}, artStore, log)
	audio := app.NewAudioMetaResolver(db, emptyProps{}, emptyProps{}, log)
	return NewService(provider, prefs, db, art, audio, 0, log), db
}

func record(id int64, path, title, artist, album string) domain.FileRecord {
	return domain.FileRecord{
		ID:         id,
		Path:       path,
		ParentPath: filepath.ToSlash(filepath.Dir(path)),
		Title:      title,
		RawArtist:  artist,
		Album:      album,
	}
}

func TestService_RunFiltersBlockedDirectories(t *testing.T) {
	provider := &catalog.Mock{Records: []domain.FileRecord{
		record(1, "/music/rock/song.mp3", "Song", "Alice", "Debut"),
		record(2, "/music/podcasts/ep1.mp3", "Episode 1", "Host", "Show"),
		record(3, "/music/podcasts/archive/ep2.mp3", "Episode 2", "Host", "Show"),
	}}
	prefs := &prefsStub{prefs: domain.Preferences{
		BlockedDirs: []string{"/music/podcasts"},
	}}
	svc, db := newTestService(t, provider, prefs)
	ctx := context.Background()

	if err := svc.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	last, running := svc.Status()
	if running {
		t.Error("expected sync to be finished")
	}
	if last.State != domain.SyncDone {
		t.Errorf("state = %s, want %s", last.State, domain.SyncDone)
	}
	if last.FilesSeen != 3 || last.Filtered != 2 || last.Persisted != 1 {
		t.Errorf("counters = seen %d filtered %d persisted %d, want 3/2/1",
			last.FilesSeen, last.Filtered, last.Persisted)
	}

	songs, err := db.ListSongs(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(songs) != 1 || songs[0].Title != "Song" {
		t.Fatalf("unexpected songs: %+v", songs)
	}
	artists, _ := db.ListArtists(ctx, 10, 0)
	if len(artists) != 1 || artists[0].Name != "Alice" {
		t.Errorf("unexpected artists: %+v", artists)
	}
	albums, _ := db.ListAlbums(ctx, 10, 0)
	if len(albums) != 1 || albums[0].Title != "Debut" {
		t.Errorf("unexpected albums: %+v", albums)
	}
	refs, _ := db.CountRefs(ctx)
	if refs != 1 {
		t.Errorf("expected 1 cross-ref, got %d", refs)
	}
}

func TestService_RunTwiceIsIdempotent(t *testing.T) {
	provider := &catalog.Mock{Records: []domain.FileRecord{
		record(1, "/music/a.mp3", "A", "Alice & Bob", "Duets"),
		record(2, "/music/b.mp3", "B", "Alice", "Duets"),
	}}
	svc, db := newTestService(t, provider, &prefsStub{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.Run(ctx); err != nil {
			t.Fatalf("Run %d failed: %v", i+1, err)
		}
	}

	songs, _ := db.ListSongs(ctx, 10, 0)
	if len(songs) != 2 {
		t.Errorf("expected 2 songs, got %d", len(songs))
	}
	artists, _ := db.ListArtists(ctx, 10, 0)
	if len(artists) != 2 {
		t.Errorf("expected 2 artists, got %d", len(artists))
	}
	albums, _ := db.ListAlbums(ctx, 10, 0)
	if len(albums) != 1 {
		t.Errorf("expected 1 album, got %d", len(albums))
	}
	refs, _ := db.CountRefs(ctx)
	if refs != 3 {
		t.Errorf("expected 3 cross-refs, got %d", refs)
	}
}

func TestService_ProviderFailureMarksRunFailed(t *testing.T) {
	provider := &catalog.Mock{Err: errors.New("disk on fire")}
	svc, db := newTestService(t, provider, &prefsStub{})
	ctx := context.Background()

	if err := svc.Run(ctx); err == nil {
		t.Fatal("expected Run to fail")
	}

	last, _ := svc.Status()
	if last.State != domain.SyncFailed {
		t.Errorf("state = %s, want %s", last.State, domain.SyncFailed)
	}
	if last.Error == nil {
		t.Error("expected failure reason to be recorded")
	}

	runs, err := db.ListSyncRuns(ctx, 5)
	if err != nil {
		t.Fatalf("ListSyncRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].State != domain.SyncFailed {
		t.Errorf("unexpected runs: %+v", runs)
	}
	if runs[0].FinishedAt == nil {
		t.Error("failed run should still be finished")
	}
}

func TestService_PreferencesErrorPreventsStart(t *testing.T) {
	provider := &catalog.Mock{}
	prefs := &prefsStub{err: errors.New("settings table corrupt")}
	svc, db := newTestService(t, provider, prefs)
	ctx := context.Background()

	if err := svc.Run(ctx); err == nil {
		t.Fatal("expected Run to fail")
	}
	if provider.Calls != 0 {
		t.Errorf("catalog should not be enumerated, got %d calls", provider.Calls)
	}

	runs, err := db.ListSyncRuns(ctx, 5)
	if err != nil {
		t.Fatalf("ListSyncRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("no run row should exist, got %d", len(runs))
	}

	// the service is free again afterwards
	prefs.err = nil
	if err := svc.Run(ctx); err != nil {
		t.Errorf("Run after recovery failed: %v", err)
	}
}

func TestService_TriggerRejectsConcurrentSync(t *testing.T) {
	block := make(chan struct{})
	provider := &blockingProvider{release: block}
	svc, _ := newTestService(t, provider, &prefsStub{})

	if err := svc.Trigger(); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if err := svc.Trigger(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Trigger = %v, want ErrAlreadyRunning", err)
	}

	close(block)
	waitIdle(t, svc)

	if err := svc.Trigger(); err != nil {
		t.Errorf("Trigger after completion failed: %v", err)
	}
	waitIdle(t, svc)
}

func TestService_ScanBatchSizeHonorsConfiguredWorkers(t *testing.T) {
	provider := &catalog.Mock{}
	fixed, _ := newTestService(t, provider, &prefsStub{})
	fixed.workers = 3
	if got := fixed.scanBatchSize(100); got != 3 {
		t.Errorf("scanBatchSize(100) = %d, want configured 3", got)
	}

	auto, _ := newTestService(t, provider, &prefsStub{})
	if got, want := auto.scanBatchSize(100), batch.SizeFor(100, true); got != want {
		t.Errorf("scanBatchSize(100) = %d, want preset %d", got, want)
	}
	if got := auto.scanBatchSize(2); got != 2 {
		t.Errorf("scanBatchSize(2) = %d, want 2", got)
	}
}

type blockingProvider struct {
	release chan struct{}
}

func (p *blockingProvider) Enumerate(ctx context.Context) ([]domain.FileRecord, error) {
	<-p.release
	return nil, nil
}

func waitIdle(t *testing.T, svc *Service) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if _, running := svc.Status(); !running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("sync never finished")
}
