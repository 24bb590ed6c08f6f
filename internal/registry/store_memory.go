package registry

import (
	"context"
	"sync"

	"bizintel/pkg/domain"
	"bizintel/pkg/platform/sentinel"
)

// InMemoryStore keeps businesses in a mutex-guarded map. It is the default
// backend for single-instance deployments and tests.
type InMemoryStore struct {
	mu         sync.RWMutex
	businesses map[domain.BusinessID]*Business
	byBIID     map[domain.BIID]domain.BusinessID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		businesses: make(map[domain.BusinessID]*Business),
		byBIID:     make(map[domain.BIID]domain.BusinessID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, b *Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.businesses[b.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byBIID[b.BIID]; exists {
		return sentinel.ErrConflict
	}
	cp := *b
	s.businesses[b.ID] = &cp
	s.byBIID[b.BIID] = b.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.BusinessID) (*Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.businesses[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *InMemoryStore) GetByBIID(_ context.Context, biID domain.BIID) (*Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byBIID[biID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	b, ok := s.businesses[id]
	if !ok {
		// Deleted business; its BIID tombstone remains.
		return nil, sentinel.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, b *Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.businesses[b.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.BIID != b.BIID {
		// BIID is immutable once issued.
		return sentinel.ErrConflict
	}
	cp := *b
	// The claim flags are owned by MarkClaimed. An edit whose read predates a
	// claim approval must not carry stale flags back in, so the stored values
	// win and are reported back to the caller.
	cp.Claimed = existing.Claimed
	cp.Verified = existing.Verified
	s.businesses[b.ID] = &cp
	b.Claimed = cp.Claimed
	b.Verified = cp.Verified
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.BusinessID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.businesses[id]; !ok {
		return sentinel.ErrNotFound
	}
	// The BIID index entry stays: an issued BIID is never reused, and keeping
	// the tombstone makes accidental re-registration impossible.
	delete(s.businesses, id)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Business, 0, len(s.businesses))
	for _, b := range s.businesses {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) MarkClaimed(_ context.Context, id domain.BusinessID) (*Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.businesses[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if b.Claimed {
		return nil, sentinel.ErrAlreadyClaimed
	}
	b.Claimed = true
	b.Verified = true
	cp := *b
	return &cp, nil
}
