package verification

import (
	"context"
	"sync"
)

// RequestStore persists detailed-verification requests, append-only.
type RequestStore interface {
	Save(ctx context.Context, r *Request) error
	List(ctx context.Context) ([]*Request, error)
}

// InMemoryRequestStore is the default append-only request log.
type InMemoryRequestStore struct {
	mu       sync.RWMutex
	requests []*Request
}

func NewInMemoryRequestStore() *InMemoryRequestStore {
	return &InMemoryRequestStore{}
}

func (s *InMemoryRequestStore) Save(_ context.Context, r *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.requests = append(s.requests, &cp)
	return nil
}

func (s *InMemoryRequestStore) List(_ context.Context) ([]*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Request, 0, len(s.requests))
	for _, r := range s.requests {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
