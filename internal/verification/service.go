package verification

import (
	"context"
	"strings"
	"time"

	"bizintel/internal/identifier"
	"bizintel/internal/platform/metrics"
	"bizintel/internal/registry"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

// BusinessLookup is the slice of the registry this service reads from.
type BusinessLookup interface {
	GetByBIID(ctx context.Context, biID domain.BIID) (*registry.Business, error)
}

// Service verifies BI IDs. Syntactic validation always runs first (the
// identifier package owns it); only syntactically valid IDs hit the registry.
type Service struct {
	lookup   BusinessLookup
	requests RequestStore
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(lookup BusinessLookup, requests RequestStore, m *metrics.Metrics) *Service {
	return &Service{lookup: lookup, requests: requests, metrics: m, now: time.Now}
}

// WithClock overrides the service clock; tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Verify checks a candidate BI ID. The two failure causes stay
// distinguishable: a malformed ID never reaches the registry, an unknown one
// passed the format check but resolved to nothing.
func (s *Service) Verify(ctx context.Context, candidate string) (*Result, error) {
	now := s.now()

	if res := identifier.Validate(candidate); !res.Valid {
		s.countVerification("malformed")
		return &Result{
			Valid:            false,
			Reason:           ReasonMalformed,
			Message:          res.Reason,
			VerificationDate: now,
		}, nil
	}

	b, err := s.lookup.GetByBIID(ctx, domain.BIID(candidate))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.countVerification("unknown")
			return &Result{
				Valid:            false,
				Reason:           ReasonUnknown,
				Message:          "BI ID not found",
				VerificationDate: now,
			}, nil
		}
		return nil, err
	}

	status := "registered"
	if b.Verified {
		status = "verified"
	}
	s.countVerification("valid")
	return &Result{
		Valid:            true,
		Business:         b,
		Status:           status,
		VerificationDate: now,
	}, nil
}

// RequestDetailed records an auditable detailed-verification request. It
// succeeds for any syntactically valid BI ID, resolved or not, and never
// changes business state.
func (s *Service) RequestDetailed(ctx context.Context, biID, requesterName, requesterContact, purpose string) (*Request, error) {
	parsed, err := domain.ParseBIID(biID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(requesterName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "requester_name is required")
	}
	if strings.TrimSpace(requesterContact) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "requester_contact is required")
	}
	if strings.TrimSpace(purpose) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "purpose is required")
	}

	r := &Request{
		ID:               domain.NewVerificationRequestID(),
		BIID:             parsed,
		RequesterName:    strings.TrimSpace(requesterName),
		RequesterContact: strings.TrimSpace(requesterContact),
		Purpose:          strings.TrimSpace(purpose),
		RequestedAt:      s.now(),
	}
	if b, err := s.lookup.GetByBIID(ctx, parsed); err == nil {
		r.BusinessName = b.Name
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "store verification request", err)
	}
	return r, nil
}

// ListRequests returns the audit trail of detailed-verification requests.
func (s *Service) ListRequests(ctx context.Context) ([]*Request, error) {
	out, err := s.requests.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list verification requests", err)
	}
	return out, nil
}

func (s *Service) countVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.Verifications.WithLabelValues(outcome).Inc()
	}
}
