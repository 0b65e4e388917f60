package app

import (
	"context"

	"github.com/avilaroman/cadenza/internal/cache"
	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/domain"
	"github.com/avilaroman/cadenza/internal/logger"
	"github.com/avilaroman/cadenza/internal/merge"
	"github.com/avilaroman/cadenza/internal/metrics"
	"github.com/avilaroman/cadenza/internal/tagging"
)

// StoredMetaLookup is the backend-store view the resolver needs.
type StoredMetaLookup interface {
	GetAudioMetaBySongID(ctx context.Context, songID int64) (*domain.AudioMeta, error)
}

// AudioMetaResolver answers "what are this file's audio properties" with a
// bounded cache, a stored-value short-circuit, a fast container read and, on
// deep scans only, a slow probe that fills just the fields still missing.
// The final result is cached even when partially null, so permanently
// unreadable files are probed at most once per process lifetime.
type AudioMetaResolver struct {
	cache  *cache.LRU[int64, domain.AudioMeta]
	lookup StoredMetaLookup
	fast   tagging.PropertiesReader
	deep   tagging.PropertiesReader
	log    *logger.Logger
}

func NewAudioMetaResolver(lookup StoredMetaLookup, fast, deep tagging.PropertiesReader, log *logger.Logger) *AudioMetaResolver {
	return &AudioMetaResolver{
		cache:  cache.NewLRU[int64, domain.AudioMeta](constants.AudioPropsCacheCapacity),
		lookup: lookup,
		fast:   fast,
		deep:   deep,
		log:    log.WithComponent("audiometa"),
	}
}

// Resolve returns the best-known audio properties for record.
func (r *AudioMetaResolver) Resolve(ctx context.Context, record domain.FileRecord, deepScan bool) domain.AudioMeta {
	if meta, ok := r.cache.Get(record.ID); ok {
		metrics.CacheHits.WithLabelValues("audio").Inc()
		return meta
	}
	metrics.CacheMisses.WithLabelValues("audio").Inc()

	var stored domain.AudioMeta
	if persisted, err := r.lookup.GetAudioMetaBySongID(ctx, record.ID); err == nil && persisted != nil {
		stored = *persisted
		if !deepScan && stored.Complete() {
			r.cache.Put(record.ID, stored)
			return stored
		}
	}

	meta, err := r.fast.ReadProperties(record.Path)
	if err != nil {
		r.log.WithFile(record.Path).Debug("fast probe failed", "error", err)
	}

	if deepScan && (meta.MimeType == nil || meta.SampleRate == nil || meta.Bitrate == nil) {
		if probed, probeErr := r.deep.ReadProperties(record.Path); probeErr != nil {
			r.log.WithFile(record.Path).Debug("deep probe failed", "error", probeErr)
		} else {
			// fill only fields the fast read left missing
			meta = merge.PreferStored(meta, probed)
		}
	}

	meta = merge.PreferStored(meta, stored)

	// cache even partial results to avoid re-probing unreadable files
	r.cache.Put(record.ID, meta)
	return meta
}
