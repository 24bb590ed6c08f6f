package claims

import (
	"context"
	"sync"
	"time"

	"bizintel/pkg/domain"
	"bizintel/pkg/platform/sentinel"
)

// InMemoryStore keeps claims in an append-only slice so submission order is
// free, with an id index for lookups.
type InMemoryStore struct {
	mu     sync.RWMutex
	claims []*Claim
	byID   map[domain.ClaimID]*Claim
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[domain.ClaimID]*Claim)}
}

func (s *InMemoryStore) Save(_ context.Context, c *Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[c.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *c
	s.claims = append(s.claims, &cp)
	s.byID[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.ClaimID) (*Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) MarkApproved(_ context.Context, id domain.ClaimID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.Approved = true
	approvedAt := at
	c.ApprovedAt = &approvedAt
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Claim, 0, len(s.claims))
	for _, c := range s.claims {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) ListByBusiness(_ context.Context, businessID domain.BusinessID) ([]*Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Claim
	for _, c := range s.claims {
		if c.BusinessID == businessID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}
