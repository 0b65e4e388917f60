package domain

import "time"

// SyncState is one step of the synchronization state machine.
type SyncState string

const (
	SyncIdle         SyncState = "idle"
	SyncEnumerating  SyncState = "enumerating"
	SyncFiltering    SyncState = "filtering"
	SyncDeepScanning SyncState = "deep_scanning"
	SyncMerging      SyncState = "merging"
	SyncPersisting   SyncState = "persisting"
	SyncDone         SyncState = "done"
	SyncFailed       SyncState = "failed"
)

// Terminal reports whether the state ends a sync run.
func (s SyncState) Terminal() bool {
	return s == SyncDone || s == SyncFailed
}

// SyncRun records one synchronization pass.
type SyncRun struct {
	ID         string     `json:"id" db:"id"`
	State      SyncState  `json:"state" db:"state"`
	DeepScan   bool       `json:"deep_scan" db:"deep_scan"`
	FilesSeen  int        `json:"files_seen" db:"files_seen"`
	Filtered   int        `json:"filtered" db:"filtered"`
	Persisted  int        `json:"persisted" db:"persisted"`
	Error      *string    `json:"error,omitempty" db:"error"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}
