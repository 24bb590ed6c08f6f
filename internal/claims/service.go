package claims

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"bizintel/internal/platform/metrics"
	"bizintel/internal/registry"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
	"bizintel/pkg/platform/sentinel"
)

// OwnershipRegistry is the slice of the business registry the claim workflow
// needs: lookups plus the single-writer claimed transition.
type OwnershipRegistry interface {
	Get(ctx context.Context, id domain.BusinessID) (*registry.Business, error)
	MarkClaimed(ctx context.Context, id domain.BusinessID) (*registry.Business, error)
}

// Service runs the claim state machine:
//
//	Unclaimed -> PendingClaim (one or more outstanding claims)
//	PendingClaim -> Approved  (claimed=true, verified=true; terminal)
//
// There is no Rejected state; declining a claim is an unspecified extension
// point.
type Service struct {
	store    Store
	registry OwnershipRegistry
	metrics  *metrics.Metrics
	now      func() time.Time

	// locks serializes approval per business so concurrent approvals cannot
	// both pass the claimed check. The registry store's compare-and-swap is
	// the backstop for multi-instance deployments.
	locksMu sync.Mutex
	locks   map[domain.BusinessID]*sync.Mutex
}

func NewService(store Store, reg OwnershipRegistry, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		registry: reg,
		metrics:  m,
		now:      time.Now,
		locks:    make(map[domain.BusinessID]*sync.Mutex),
	}
}

// WithClock overrides the service clock; tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit appends a pending claim. Multiple claimants may queue on the same
// business; the business reference is soft, so a claim on a vanished business
// is accepted and simply can never be approved. A business that is already
// claimed is past the state machine's accepting states, so further claims are
// rejected as conflicts.
func (s *Service) Submit(ctx context.Context, businessID domain.BusinessID, ownerName, contact string) (*Claim, error) {
	if strings.TrimSpace(ownerName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "owner_name is required")
	}
	if strings.TrimSpace(contact) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "contact is required")
	}

	b, err := s.registry.Get(ctx, businessID)
	if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}
	if b != nil && b.Claimed {
		return nil, dErrors.New(dErrors.CodeConflict, "business is already claimed")
	}

	c := &Claim{
		ID:          domain.NewClaimID(),
		BusinessID:  businessID,
		OwnerName:   strings.TrimSpace(ownerName),
		Contact:     strings.TrimSpace(contact),
		SubmittedAt: s.now(),
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "store claim", err)
	}
	if s.metrics != nil {
		s.metrics.ClaimsSubmitted.Inc()
	}
	return c, nil
}

// Approve transitions one claim to approved and the referenced business to
// claimed+verified. Idempotent per business: once any claim is approved,
// approving a different claim on the same business fails with a conflict and
// the original owner-of-record stands. Re-approving the winning claim itself
// is a no-op success.
func (s *Service) Approve(ctx context.Context, claimID domain.ClaimID) (*registry.Business, error) {
	c, err := s.store.Get(ctx, claimID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load claim", err)
	}

	lock := s.businessLock(c.BusinessID)
	lock.Lock()
	defer lock.Unlock()

	if c.Approved {
		// The winner being re-approved is the one permissible repeat.
		return s.registry.Get(ctx, c.BusinessID)
	}

	b, err := s.registry.MarkClaimed(ctx, c.BusinessID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) && s.metrics != nil {
			s.metrics.ClaimConflicts.Inc()
		}
		return nil, err
	}

	if err := s.store.MarkApproved(ctx, claimID, s.now()); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "record claim approval", err)
	}
	if s.metrics != nil {
		s.metrics.ClaimsApproved.Inc()
	}
	return b, nil
}

// List returns all claims in submission order, pending and approved
// intermixed.
func (s *Service) List(ctx context.Context) ([]*Claim, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list claims", err)
	}
	return out, nil
}

// ListByBusiness returns one business's claims in submission order.
func (s *Service) ListByBusiness(ctx context.Context, businessID domain.BusinessID) ([]*Claim, error) {
	out, err := s.store.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list claims", err)
	}
	return out, nil
}

func (s *Service) businessLock(id domain.BusinessID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
