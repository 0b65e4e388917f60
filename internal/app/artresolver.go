// Package app holds the application services composing caches, extraction
// adapters and the backend store into the retrieval algorithms the sync
// pipeline runs per file.
package app

import (
	"strings"

	"github.com/avilaroman/cadenza/internal/artwork"
	"github.com/avilaroman/cadenza/internal/cache"
	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/domain"
	"github.com/avilaroman/cadenza/internal/logger"
	"github.com/avilaroman/cadenza/internal/merge"
	"github.com/avilaroman/cadenza/internal/metrics"
	"github.com/avilaroman/cadenza/internal/tagging"
)

// ArtResolver answers "what artwork does this file have" with a bounded
// per-album cache, a persisted-artifact short-circuit and a negative cache
// for files known to carry no art. Extraction failures are never propagated;
// they degrade to "no art".
type ArtResolver struct {
	cache     *cache.LRU[string, string]
	negative  *cache.NegativeSet[int64]
	extractor tagging.PictureExtractor
	store     *artwork.Store
	log       *logger.Logger
}

func NewArtResolver(extractor tagging.PictureExtractor, store *artwork.Store, log *logger.Logger) *ArtResolver {
	return &ArtResolver{
		cache:     cache.NewLRU[string, string](constants.ArtCacheCapacity),
		negative:  cache.NewNegativeSet[int64](),
		extractor: extractor,
		store:     store,
		log:       log.WithComponent("art"),
	}
}

// Resolve returns the artwork reference for record, or "" when the file has
// no extractable art. deepScan forces re-extraction past persisted artifacts
// and clears any negative mark before retrying.
func (r *ArtResolver) Resolve(record domain.FileRecord, deepScan bool) string {
	key := albumKey(record)

	if ref, ok := r.cache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("art").Inc()
		return ref
	}
	metrics.CacheMisses.WithLabelValues("art").Inc()

	if !deepScan {
		if ref, ok := r.store.RefFor(record.ID); ok {
			r.cache.Put(key, ref)
			return ref
		}
	}

	if r.negative.Has(record.ID) || r.store.HasMarker(record.ID) {
		if !deepScan {
			return ""
		}
		// deep scan re-checks files previously marked artless
		r.negative.Clear(record.ID)
		r.store.ClearMarker(record.ID)
	}

	pic, err := r.extractor.ExtractPicture(record.Path)
	if err != nil {
		r.log.WithFile(record.Path).Debug("no embedded art", "error", err)
		r.negative.Mark(record.ID)
		r.store.MarkAbsent(record.ID)
		return ""
	}

	ref, err := r.store.Save(record.ID, pic.Data)
	if err != nil {
		r.log.WithFile(record.Path).Warn("failed to persist artwork", "error", err)
		return ""
	}

	// successful extraction always clears the negative mark
	r.negative.Clear(record.ID)
	r.cache.Put(key, ref)
	return ref
}

// albumKey is the per-album cache key: album title plus primary artist, so
// same-titled albums by different artists stay separate.
func albumKey(record domain.FileRecord) string {
	album := strings.TrimSpace(record.Album)
	if album == "" {
		album = constants.UnknownAlbum
	}
	primary := constants.UnknownArtist
	if names := merge.SplitArtists(record.RawArtist); len(names) > 0 {
		primary = names[0]
	}
	return strings.ToLower(album) + "\x00" + strings.ToLower(primary)
}
