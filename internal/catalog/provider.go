// Package catalog enumerates the device's media catalog into raw file
// records. The provider is read-only; normalization and persistence happen
// downstream in the sync pipeline.
package catalog

import (
	"context"

	"github.com/avilaroman/cadenza/internal/domain"
)

// Provider yields the raw file records for one sync pass.
type Provider interface {
	Enumerate(ctx context.Context) ([]domain.FileRecord, error)
}
