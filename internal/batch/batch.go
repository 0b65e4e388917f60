// Package batch is a reusable bounded-concurrency primitive: it maps a
// function over a slice in consecutive chunks, running each chunk's items
// concurrently and preserving input order in the results.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/avilaroman/cadenza/internal/constants"
)

// SizeFor picks a batch size for n items. Small inputs are not chunked at all;
// larger inputs use a preset depending on whether the work is I/O-bound (more
// outstanding operations) or CPU-bound (near available parallelism).
func SizeFor(n int, ioBound bool) int {
	if n < constants.SmallBatchThreshold {
		if n < 1 {
			return 1
		}
		return n
	}
	if ioBound {
		return constants.IOBatchSize
	}
	return runtime.GOMAXPROCS(0)
}

// Process maps fn over items in chunks of batchSize, preserving input order.
// Within a chunk every item runs on its own goroutine; the next chunk starts
// only after the whole chunk has completed, so at most batchSize operations
// are in flight at once. Cancellation is honored between chunks: an in-flight
// chunk finishes, but no further chunks are started.
func Process[T, R any](ctx context.Context, items []T, batchSize int, fn func(context.Context, T) R) []R {
	return ProcessWithProgress(ctx, items, batchSize, fn, nil)
}

// ProcessWithProgress behaves like Process and additionally reports
// (processed, total) after each completed chunk.
func ProcessWithProgress[T, R any](ctx context.Context, items []T, batchSize int, fn func(context.Context, T) R, progress func(done, total int)) []R {
	if batchSize < 1 {
		batchSize = 1
	}

	results := make([]R, len(items))
	for start := 0; start < len(items); start += batchSize {
		if ctx.Err() != nil {
			return results[:start]
		}

		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = fn(ctx, items[i])
			}(i)
		}
		wg.Wait()

		if progress != nil {
			progress(end, len(items))
		}
	}
	return results
}

// ProcessFiltered maps fn over items like Process but drops every result for
// which fn reported no value. Relative order of kept results is preserved.
func ProcessFiltered[T, R any](ctx context.Context, items []T, batchSize int, fn func(context.Context, T) (R, bool)) []R {
	type maybe struct {
		value R
		ok    bool
	}

	wrapped := Process(ctx, items, batchSize, func(ctx context.Context, item T) maybe {
		value, ok := fn(ctx, item)
		return maybe{value: value, ok: ok}
	})

	kept := make([]R, 0, len(wrapped))
	for _, m := range wrapped {
		if m.ok {
			kept = append(kept, m.value)
		}
	}
	return kept
}
