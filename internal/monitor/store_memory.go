package monitor

import (
	"context"
	"sync"
	"time"

	"bizintel/pkg/domain"
)

// InMemoryEventStore keeps the change log as an append-only slice.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events []*ChangeEvent
}

func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{}
}

func (s *InMemoryEventStore) Save(_ context.Context, e *ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events = append(s.events, &cp)
	return nil
}

func (s *InMemoryEventStore) ListRecent(_ context.Context, limit int) ([]*ChangeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirst(func(*ChangeEvent) bool { return true }, limit), nil
}

func (s *InMemoryEventStore) ListSince(_ context.Context, since time.Time) ([]*ChangeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirst(func(e *ChangeEvent) bool {
		return !e.DetectedAt.Before(since)
	}, 0), nil
}

// newestFirst walks the append-ordered slice backwards. limit 0 means all.
func (s *InMemoryEventStore) newestFirst(keep func(*ChangeEvent) bool, limit int) []*ChangeEvent {
	var out []*ChangeEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		if !keep(s.events[i]) {
			continue
		}
		cp := *s.events[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// InMemoryAlertStore keeps derived alerts, newest last.
type InMemoryAlertStore struct {
	mu     sync.RWMutex
	alerts []*Alert
}

func NewInMemoryAlertStore() *InMemoryAlertStore {
	return &InMemoryAlertStore{}
}

func (s *InMemoryAlertStore) Save(_ context.Context, a *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.alerts = append(s.alerts, &cp)
	return nil
}

func (s *InMemoryAlertStore) ListRecent(_ context.Context, limit int) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Alert
	for i := len(s.alerts) - 1; i >= 0; i-- {
		cp := *s.alerts[i]
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// InMemorySubscriptionStore keys subscriptions by ID with a per-business
// index.
type InMemorySubscriptionStore struct {
	mu         sync.RWMutex
	byID       map[domain.SubscriptionID]*Subscription
	byBusiness map[domain.BusinessID][]domain.SubscriptionID
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		byID:       make(map[domain.SubscriptionID]*Subscription),
		byBusiness: make(map[domain.BusinessID][]domain.SubscriptionID),
	}
}

func (s *InMemorySubscriptionStore) Save(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sub
	s.byID[sub.ID] = &cp
	s.byBusiness[sub.BusinessID] = append(s.byBusiness[sub.BusinessID], sub.ID)
	return nil
}

func (s *InMemorySubscriptionStore) Delete(_ context.Context, id domain.SubscriptionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	ids := s.byBusiness[sub.BusinessID]
	for i, candidate := range ids {
		if candidate == id {
			s.byBusiness[sub.BusinessID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemorySubscriptionStore) ListByBusiness(_ context.Context, businessID domain.BusinessID) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Subscription
	for _, id := range s.byBusiness[businessID] {
		if sub, ok := s.byID[id]; ok {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}
