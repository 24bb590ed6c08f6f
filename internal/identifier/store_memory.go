package identifier

import (
	"context"
	"sync"

	"bizintel/pkg/domain"
	"bizintel/pkg/platform/sentinel"
)

// InMemorySequenceStore allocates sequences from process memory. Suitable for
// single-instance deployments and tests; use the Redis store when multiple
// instances issue IDs.
type InMemorySequenceStore struct {
	mu     sync.Mutex
	issued map[string]int
}

func NewInMemorySequenceStore() *InMemorySequenceStore {
	return &InMemorySequenceStore{issued: make(map[string]int)}
}

func (s *InMemorySequenceStore) Next(_ context.Context, dateKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.issued[dateKey]
	if current >= domain.MaxDailySequence {
		// Exhaustion leaves the counter untouched so the state stays sane.
		return 0, sentinel.ErrExhausted
	}
	s.issued[dateKey] = current + 1
	return current + 1, nil
}
