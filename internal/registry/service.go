package registry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"bizintel/internal/identifier"
	"bizintel/internal/platform/metrics"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
	"bizintel/pkg/platform/sentinel"
)

// Service owns business lifecycle and search. It keeps orchestration out of
// handlers and translates store sentinels into domain errors.
type Service struct {
	store   Store
	issuer  *identifier.Issuer
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewService(store Store, issuer *identifier.Issuer, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		issuer:  issuer,
		metrics: m,
		tracer:  otel.Tracer("bizintel/registry"),
		now:     time.Now,
	}
}

// WithClock overrides the service clock; tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create registers a business and issues its BI ID. The BI ID is assigned
// here exactly once; nothing else ever writes it.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Business, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Create")
	defer span.End()

	if strings.TrimSpace(params.Name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "business name is required")
	}
	if err := validateScore(params.DigitalScore); err != nil {
		return nil, err
	}

	now := s.now()
	biID, err := s.issuer.Issue(ctx, now)
	if err != nil {
		return nil, err
	}

	b := &Business{
		ID:           domain.NewBusinessID(),
		BIID:         biID,
		Name:         strings.TrimSpace(params.Name),
		Region:       params.Region,
		Sector:       params.Sector,
		Formality:    params.Formality,
		DigitalScore: params.DigitalScore,
		Premium:      params.Premium,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "store business", err)
	}
	if s.metrics != nil {
		s.metrics.BusinessesCreated.Inc()
	}
	return b, nil
}

// Get fetches one business by id.
func (s *Service) Get(ctx context.Context, id domain.BusinessID) (*Business, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "business not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load business", err)
	}
	return b, nil
}

// GetByBIID resolves a BI ID to its business. The caller is responsible for
// syntactic validation; this is purely a registry lookup.
func (s *Service) GetByBIID(ctx context.Context, biID domain.BIID) (*Business, error) {
	b, err := s.store.GetByBIID(ctx, biID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "BI ID does not resolve to a business")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "load business by BI ID", err)
	}
	return b, nil
}

// Update applies a partial edit. BI ID and the claim flags never move through
// here; ownership transfers only via the claim workflow.
func (s *Service) Update(ctx context.Context, id domain.BusinessID, params UpdateParams) (*Business, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Update")
	defer span.End()

	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "business name cannot be empty")
		}
		b.Name = strings.TrimSpace(*params.Name)
	}
	if params.Region != nil {
		b.Region = *params.Region
	}
	if params.Sector != nil {
		b.Sector = *params.Sector
	}
	if params.Formality != nil {
		b.Formality = *params.Formality
	}
	if params.DigitalScore != nil {
		if err := validateScore(params.DigitalScore); err != nil {
			return nil, err
		}
		score := *params.DigitalScore
		b.DigitalScore = &score
	}
	if params.Premium != nil {
		b.Premium = *params.Premium
	}
	b.UpdatedAt = s.now()

	if err := s.store.Update(ctx, b); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "business not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "update business", err)
	}
	return b, nil
}

// Delete removes a business. Its BI ID stays burned forever.
func (s *Service) Delete(ctx context.Context, id domain.BusinessID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "business not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "delete business", err)
	}
	return nil
}

// List returns every live business.
func (s *Service) List(ctx context.Context) ([]*Business, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list businesses", err)
	}
	return out, nil
}

// Feature flips a business to premium (admin operation).
func (s *Service) Feature(ctx context.Context, id domain.BusinessID) (*Business, error) {
	premium := true
	return s.Update(ctx, id, UpdateParams{Premium: &premium})
}

// MarkClaimed performs the single-writer ownership transition used by claim
// approval. Exactly one caller per business ever succeeds.
func (s *Service) MarkClaimed(ctx context.Context, id domain.BusinessID) (*Business, error) {
	b, err := s.store.MarkClaimed(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "business not found")
		case errors.Is(err, sentinel.ErrAlreadyClaimed):
			return nil, dErrors.Wrap(dErrors.CodeConflict, "business is already claimed", err)
		default:
			return nil, dErrors.Wrap(dErrors.CodeInternal, "mark business claimed", err)
		}
	}
	return b, nil
}

// Search filters and ranks businesses: premium listings first, then verified,
// preserving creation order within each band.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]*Business, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Search")
	defer span.End()

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "search businesses", err)
	}

	results := make([]*Business, 0, len(all))
	for _, b := range all {
		if matchesFilter(b, filter) {
			results = append(results, b)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Premium != results[j].Premium {
			return results[i].Premium
		}
		if results[i].Verified != results[j].Verified {
			return results[i].Verified
		}
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results, nil
}

func matchesFilter(b *Business, f SearchFilter) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(f.Query)) {
		return false
	}
	if f.Region != "" && b.Region != f.Region {
		return false
	}
	if f.Sector != "" && b.Sector != f.Sector {
		return false
	}
	if f.MinScore != nil {
		score := 0
		if b.DigitalScore != nil {
			score = *b.DigitalScore
		}
		if score < *f.MinScore {
			return false
		}
	}
	if f.Premium != nil && b.Premium != *f.Premium {
		return false
	}
	if f.BIID != "" && b.BIID.String() != f.BIID {
		return false
	}
	if f.Verified != nil && b.Verified != *f.Verified {
		return false
	}
	return true
}

func validateScore(score *int) error {
	if score == nil {
		return nil
	}
	if *score < 0 || *score > 100 {
		return dErrors.New(dErrors.CodeValidation, "digital_score must be between 0 and 100")
	}
	return nil
}
