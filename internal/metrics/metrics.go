// Package metrics exposes prometheus instrumentation for the sync pipeline
// and the metadata caches.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncDuration observes how long full sync passes take.
	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cadenza_sync_duration_seconds",
		Help:    "Duration of full library sync passes",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// SyncFilesSeen counts raw records produced by catalog enumeration.
	SyncFilesSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadenza_sync_files_seen_total",
		Help: "Raw file records enumerated from the media catalog",
	})

	// SyncFilesFiltered counts records dropped by directory rules.
	SyncFilesFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadenza_sync_files_filtered_total",
		Help: "File records dropped by directory allow/block rules",
	})

	// SyncSongsPersisted counts songs written by completed syncs.
	SyncSongsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadenza_sync_songs_persisted_total",
		Help: "Songs written to the backend store",
	})

	// SyncFailures counts sync passes ending in the failed state.
	SyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cadenza_sync_failures_total",
		Help: "Sync passes that ended in the failed state",
	})

	// ScanWorkers reports the configured deep-scan batch size.
	ScanWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cadenza_scan_workers",
		Help: "Concurrent workers used during deep scanning",
	})

	// CacheHits counts metadata cache hits per cache.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadenza_cache_hits_total",
		Help: "Metadata cache hits",
	}, []string{"cache"})

	// CacheMisses counts metadata cache misses per cache.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cadenza_cache_misses_total",
		Help: "Metadata cache misses",
	}, []string{"cache"})
)
