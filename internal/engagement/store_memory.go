package engagement

import (
	"context"
	"sync"

	"bizintel/pkg/domain"
)

// CounterStore holds per-business view and click counters. Implementations
// must make Incr atomic; concurrent increments may not be lost.
type CounterStore interface {
	Incr(ctx context.Context, id domain.BusinessID, action domain.EngagementAction) error
	Get(ctx context.Context, id domain.BusinessID) (views, clicks int64, err error)
}

type counters struct {
	views  int64
	clicks int64
}

// InMemoryCounterStore is the default mutex-guarded counter map.
type InMemoryCounterStore struct {
	mu       sync.Mutex
	counters map[domain.BusinessID]*counters
}

func NewInMemoryCounterStore() *InMemoryCounterStore {
	return &InMemoryCounterStore{counters: make(map[domain.BusinessID]*counters)}
}

func (s *InMemoryCounterStore) Incr(_ context.Context, id domain.BusinessID, action domain.EngagementAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[id]
	if !ok {
		c = &counters{}
		s.counters[id] = c
	}
	switch action {
	case domain.ActionView:
		c.views++
	case domain.ActionClick:
		c.clicks++
	}
	return nil
}

func (s *InMemoryCounterStore) Get(_ context.Context, id domain.BusinessID) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[id]
	if !ok {
		return 0, 0, nil
	}
	return c.views, c.clicks, nil
}
