// Package sync drives the end-to-end library synchronization: enumerate the
// catalog, filter by directory rules, deep-scan in bounded parallel batches,
// merge into canonical entities and persist them in chunks.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avilaroman/cadenza/internal/app"
	"github.com/avilaroman/cadenza/internal/batch"
	"github.com/avilaroman/cadenza/internal/catalog"
	"github.com/avilaroman/cadenza/internal/domain"
	"github.com/avilaroman/cadenza/internal/logger"
	"github.com/avilaroman/cadenza/internal/merge"
	"github.com/avilaroman/cadenza/internal/metrics"
	"github.com/avilaroman/cadenza/internal/rules"
	"github.com/avilaroman/cadenza/internal/store"
)

// ErrAlreadyRunning is returned when a sync is triggered while one is active.
var ErrAlreadyRunning = errors.New("sync already in progress")

// PreferencesSource supplies the user configuration snapshot at sync start.
type PreferencesSource interface {
	Preferences() (domain.Preferences, error)
}

// Service is the sync orchestrator. It runs at most one sync at a time; the
// orchestrator itself is a sequential driver that issues one batch of
// concurrent work at a time.
type Service struct {
	provider catalog.Provider
	prefs    PreferencesSource
	db       *store.DB
	merger   *merge.Merger
	art      *app.ArtResolver
	audio    *app.AudioMetaResolver
	workers  int
	log      *logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	last    domain.SyncRun
}

// NewService builds the orchestrator. scanWorkers fixes the deep-scan batch
// size; pass 0 to size batches automatically per input.
func NewService(provider catalog.Provider, prefs PreferencesSource, db *store.DB, art *app.ArtResolver, audio *app.AudioMetaResolver, scanWorkers int, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		prefs:    prefs,
		db:       db,
		merger:   merge.NewMerger(db),
		art:      art,
		audio:    audio,
		workers:  scanWorkers,
		log:      log.WithComponent("sync"),
	}
}

// Trigger starts a sync in the background. It returns ErrAlreadyRunning when
// a sync is active, and the validation error when preferences are unreadable
// (in that case the sync never starts).
func (s *Service) Trigger() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	prefs, err := s.prefs.Preferences()
	if err != nil {
		s.finish()
		return fmt.Errorf("load preferences: %w", err)
	}

	go func() {
		defer s.finish()
		if runErr := s.run(ctx, prefs); runErr != nil {
			s.log.Error("sync failed", "error", runErr)
		}
	}()
	return nil
}

// Run performs one synchronous sync pass. Used by Trigger's goroutine and
// directly by tests and one-shot invocations.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()
	defer s.finish()

	prefs, err := s.prefs.Preferences()
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	return s.run(ctx, prefs)
}

// Stop cancels the active sync, if any. The in-flight batch finishes; no
// further batches start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Status returns a snapshot of the most recent (or active) sync run.
func (s *Service) Status() (domain.SyncRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.running
}

func (s *Service) finish() {
	s.mu.Lock()
	s.running = false
	s.cancel = nil
	s.mu.Unlock()
}

func (s *Service) run(ctx context.Context, prefs domain.Preferences) error {
	start := time.Now()
	run := &domain.SyncRun{
		ID:        uuid.New().String(),
		State:     domain.SyncEnumerating,
		DeepScan:  prefs.DeepScan,
		StartedAt: start,
	}
	if err := s.db.CreateSyncRun(ctx, run); err != nil {
		return err
	}
	log := s.log.WithSync(run.ID)
	log.Info("sync started", "deep_scan", prefs.DeepScan)

	err := s.execute(ctx, run, prefs, log)
	if err != nil {
		msg := err.Error()
		run.State = domain.SyncFailed
		run.Error = &msg
		metrics.SyncFailures.Inc()
	} else {
		run.State = domain.SyncDone
		metrics.SyncDuration.Observe(time.Since(start).Seconds())
	}
	s.setState(run, run.State)

	if updateErr := s.db.UpdateSyncRun(context.WithoutCancel(ctx), run); updateErr != nil {
		log.Error("failed to record sync result", "error", updateErr)
		if err == nil {
			err = updateErr
		}
	}

	if err == nil {
		log.Info("sync done",
			"files_seen", run.FilesSeen,
			"filtered", run.Filtered,
			"persisted", run.Persisted,
			"took", time.Since(start))
	}
	return err
}

func (s *Service) execute(ctx context.Context, run *domain.SyncRun, prefs domain.Preferences, log *logger.Logger) error {
	// Enumerating
	s.setState(run, domain.SyncEnumerating)
	records, err := s.provider.Enumerate(ctx)
	if err != nil {
		return fmt.Errorf("enumerate catalog: %w", err)
	}
	run.FilesSeen = len(records)
	metrics.SyncFilesSeen.Add(float64(len(records)))

	// Filtering happens before any expensive per-file work
	s.setState(run, domain.SyncFiltering)
	ruleset := rules.New(prefs.BlockedDirs, prefs.AllowedDirs)
	filtered := records[:0:0]
	for _, record := range records {
		if ruleset.Allows(record.ParentPath) {
			filtered = append(filtered, record)
		}
	}
	dropped := len(records) - len(filtered)
	run.Filtered = dropped
	metrics.SyncFilesFiltered.Add(float64(dropped))
	log.Info("filtering complete", "kept", len(filtered), "dropped", dropped)

	// DeepScanning
	if prefs.DeepScan {
		s.setState(run, domain.SyncDeepScanning)
		size := s.scanBatchSize(len(filtered))
		metrics.ScanWorkers.Set(float64(size))
		filtered = batch.ProcessWithProgress(ctx, filtered, size, func(ctx context.Context, record domain.FileRecord) domain.FileRecord {
			record.Meta = s.audio.Resolve(ctx, record, true)
			record.ArtRef = s.art.Resolve(record, true)
			return record
		}, func(done, total int) {
			log.Debug("deep scan progress", "done", done, "total", total)
		})
		if ctx.Err() != nil {
			return fmt.Errorf("deep scan: %w", ctx.Err())
		}
	}

	// Merging
	s.setState(run, domain.SyncMerging)
	result, err := s.merger.Merge(ctx, filtered)
	if err != nil {
		return fmt.Errorf("merge records: %w", err)
	}

	// Persisting: all entity passes commit together or the sync fails
	s.setState(run, domain.SyncPersisting)
	if err := s.db.PersistBatch(ctx, result.Songs, result.Albums, result.Artists, result.Refs); err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	run.Persisted = len(result.Songs)
	metrics.SyncSongsPersisted.Add(float64(len(result.Songs)))
	return nil
}

// scanBatchSize picks the deep-scan batch size: the configured worker count
// when one was set, otherwise the I/O-bound preset for n items.
func (s *Service) scanBatchSize(n int) int {
	if s.workers > 0 {
		return s.workers
	}
	return batch.SizeFor(n, true)
}

func (s *Service) setState(run *domain.SyncRun, state domain.SyncState) {
	run.State = state
	s.mu.Lock()
	s.last = *run
	s.mu.Unlock()
	// Best-effort progress row; terminal states are written by the caller.
	if !state.Terminal() {
		_ = s.db.UpdateSyncRun(context.Background(), run)
	}
}
