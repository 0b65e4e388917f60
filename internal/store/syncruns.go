package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avilaroman/cadenza/internal/domain"
)

// CreateSyncRun records the start of a sync pass.
func (db *DB) CreateSyncRun(ctx context.Context, run *domain.SyncRun) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, state, deep_scan, files_seen, filtered, persisted, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.State, run.DeepScan, run.FilesSeen, run.Filtered, run.Persisted, run.Error, run.StartedAt)
	if err != nil {
		return fmt.Errorf("create sync run %s: %w", run.ID, err)
	}
	return nil
}

// UpdateSyncRun persists the current state and counters of a sync pass.
func (db *DB) UpdateSyncRun(ctx context.Context, run *domain.SyncRun) error {
	if run.State.Terminal() && run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}

	result, err := db.ExecContext(ctx, `
		UPDATE sync_runs
		SET state = ?, files_seen = ?, filtered = ?, persisted = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		run.State, run.FilesSeen, run.Filtered, run.Persisted, run.Error, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update sync run %s: %w", run.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("sync run %s not found", run.ID)
	}
	return nil
}

// ListSyncRuns returns recent sync runs, newest first.
func (db *DB) ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	runs := []domain.SyncRun{}
	err := db.SelectContext(ctx, &runs,
		"SELECT * FROM sync_runs ORDER BY started_at DESC LIMIT ?", limit)
	return runs, err
}
