package catalog

import (
	"context"

	"github.com/avilaroman/cadenza/internal/domain"
)

// Mock is a canned catalog provider for tests.
type Mock struct {
	Records []domain.FileRecord
	Err     error
	Calls   int
}

func (m *Mock) Enumerate(ctx context.Context) ([]domain.FileRecord, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]domain.FileRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

var _ Provider = (*Mock)(nil)
