// Package leads stores buyer inquiries directed at listed businesses.
package leads

import (
	"context"
	"strings"
	"sync"
	"time"

	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

// Lead is one inquiry. The business reference is soft, matching the rest of
// the directory.
type Lead struct {
	ID         domain.LeadID
	BusinessID domain.BusinessID
	Name       string
	Contact    string
	Message    string
	CreatedAt  time.Time
}

// Store persists leads, append-only.
type Store interface {
	Save(ctx context.Context, l *Lead) error
	List(ctx context.Context) ([]*Lead, error)
	ListByBusiness(ctx context.Context, businessID domain.BusinessID) ([]*Lead, error)
}

// InMemoryStore is the default append-only lead log.
type InMemoryStore struct {
	mu    sync.RWMutex
	leads []*Lead
}

func NewInMemoryStore() *InMemoryStore { return &InMemoryStore{} }

func (s *InMemoryStore) Save(_ context.Context, l *Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.leads = append(s.leads, &cp)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Lead, 0, len(s.leads))
	for _, l := range s.leads {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) ListByBusiness(_ context.Context, businessID domain.BusinessID) ([]*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Lead
	for _, l := range s.leads {
		if l.BusinessID == businessID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Service validates and records leads.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service clock; tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create records an inquiry. Name and contact are required; the message may
// be empty.
func (s *Service) Create(ctx context.Context, businessID domain.BusinessID, name, contact, message string) (*Lead, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(contact) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "contact is required")
	}
	l := &Lead{
		ID:         domain.NewLeadID(),
		BusinessID: businessID,
		Name:       strings.TrimSpace(name),
		Contact:    strings.TrimSpace(contact),
		Message:    strings.TrimSpace(message),
		CreatedAt:  s.now(),
	}
	if err := s.store.Save(ctx, l); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "store lead", err)
	}
	return l, nil
}

// List returns every lead in submission order.
func (s *Service) List(ctx context.Context) ([]*Lead, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list leads", err)
	}
	return out, nil
}

// ListByBusiness returns one business's leads in submission order.
func (s *Service) ListByBusiness(ctx context.Context, businessID domain.BusinessID) ([]*Lead, error) {
	out, err := s.store.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list leads", err)
	}
	return out, nil
}
