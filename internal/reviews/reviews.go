// Package reviews stores customer reviews and derives per-business ratings.
package reviews

import (
	"context"
	"strings"
	"sync"
	"time"

	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

// Review is one customer rating with an optional comment.
type Review struct {
	ID         domain.ReviewID
	BusinessID domain.BusinessID
	Author     string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// Summary is the derived rating view for one business. AverageRating is
// computed on read, never stored.
type Summary struct {
	BusinessID    domain.BusinessID
	Count         int
	AverageRating float64
	Reviews       []*Review
}

// Store persists reviews, append-only.
type Store interface {
	Save(ctx context.Context, r *Review) error
	ListByBusiness(ctx context.Context, businessID domain.BusinessID) ([]*Review, error)
}

// InMemoryStore is the default append-only review log.
type InMemoryStore struct {
	mu      sync.RWMutex
	reviews []*Review
}

func NewInMemoryStore() *InMemoryStore { return &InMemoryStore{} }

func (s *InMemoryStore) Save(_ context.Context, r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.reviews = append(s.reviews, &cp)
	return nil
}

func (s *InMemoryStore) ListByBusiness(_ context.Context, businessID domain.BusinessID) ([]*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Review
	for _, r := range s.reviews {
		if r.BusinessID == businessID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Service validates and records reviews.
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

// Create records a review. Rating is bounded to 1 through 5 inclusive.
func (s *Service) Create(ctx context.Context, businessID domain.BusinessID, author string, rating int, comment string) (*Review, error) {
	if strings.TrimSpace(author) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "author is required")
	}
	if rating < 1 || rating > 5 {
		return nil, dErrors.New(dErrors.CodeValidation, "rating must be between 1 and 5")
	}
	r := &Review{
		ID:         domain.NewReviewID(),
		BusinessID: businessID,
		Author:     strings.TrimSpace(author),
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  s.now(),
	}
	if err := s.store.Save(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "store review", err)
	}
	return r, nil
}

// Summarize returns one business's reviews and its derived average. A
// business with no reviews summarizes to count 0 and average 0.
func (s *Service) Summarize(ctx context.Context, businessID domain.BusinessID) (*Summary, error) {
	list, err := s.store.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list reviews", err)
	}
	sum := &Summary{BusinessID: businessID, Count: len(list), Reviews: list}
	if len(list) == 0 {
		return sum, nil
	}
	total := 0
	for _, r := range list {
		total += r.Rating
	}
	sum.AverageRating = float64(total) / float64(len(list))
	return sum, nil
}
