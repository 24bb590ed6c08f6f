package monitor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bizintel/internal/platform/metrics"
	"bizintel/internal/registry"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

// BusinessLister is the slice of the registry a sweep observes.
type BusinessLister interface {
	List(ctx context.Context) ([]*registry.Business, error)
}

const (
	defaultRecentLimit = 50
	defaultAlertLimit  = 20

	// trendWindow is the width of one trend observation window; the current
	// window is compared against the one immediately before it.
	trendWindow = time.Hour
)

// Service detects business changes against its last-seen snapshots, records
// them, and derives alerts for changes at or above the significance
// threshold.
type Service struct {
	registry  BusinessLister
	events    EventStore
	alerts    AlertStore
	subs      SubscriptionStore
	differ    differ
	threshold int
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	// snapshots is the previous observation of every known business. It is
	// process-local: after a restart the first sweep re-baselines instead of
	// replaying history.
	snapMu    sync.Mutex
	snapshots map[domain.BusinessID]*registry.Business
}

func NewService(reg BusinessLister, events EventStore, alerts AlertStore, subs SubscriptionStore, threshold int, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry:  reg,
		events:    events,
		alerts:    alerts,
		subs:      subs,
		threshold: threshold,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("bizintel/monitor"),
		now:       time.Now,
		snapshots: make(map[domain.BusinessID]*registry.Business),
	}
}

// WithClock overrides the service clock; tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Sweep observes the registry once: new businesses are baselined, changed
// fields become events, significant events become alerts, and vanished
// businesses are recorded as removals.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	ctx, span := s.tracer.Start(ctx, "monitor.Sweep")
	defer span.End()
	started := time.Now()

	businesses, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	result := &SweepResult{Observed: len(businesses)}
	seen := make(map[domain.BusinessID]bool, len(businesses))

	for _, b := range businesses {
		seen[b.ID] = true
		prev := s.snapshots[b.ID]
		for _, e := range s.differ.diff(prev, b, now) {
			if err := s.record(ctx, e, result); err != nil {
				return nil, err
			}
		}
		if prev == nil {
			result.NewRecords++
		}
		cp := *b
		s.snapshots[b.ID] = &cp
	}

	for id, prev := range s.snapshots {
		if seen[id] {
			continue
		}
		if err := s.record(ctx, s.differ.removal(prev, now), result); err != nil {
			return nil, err
		}
		delete(s.snapshots, id)
		result.Removed++
	}

	if s.metrics != nil {
		s.metrics.SweepDuration.Observe(time.Since(started).Seconds())
	}
	span.SetAttributes(
		attribute.Int("monitor.observed", result.Observed),
		attribute.Int("monitor.changes", result.Changes),
		attribute.Int("monitor.alerts", result.Alerts),
	)
	return result, nil
}

func (s *Service) record(ctx context.Context, e *ChangeEvent, result *SweepResult) error {
	if err := s.events.Save(ctx, e); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "store change event", err)
	}
	result.Changes++
	if s.metrics != nil {
		s.metrics.ChangesDetected.WithLabelValues(string(e.ChangeType)).Inc()
	}
	if e.NewBusiness || e.Significance < s.threshold {
		return nil
	}

	a := &Alert{
		ID:           domain.NewAlertID(),
		BusinessID:   e.BusinessID,
		BusinessName: e.BusinessName,
		ChangeType:   e.ChangeType,
		Severity:     e.Severity,
		Significance: e.Significance,
		Message:      alertMessage(e),
		RaisedAt:     e.DetectedAt,
	}
	if err := s.alerts.Save(ctx, a); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "store alert", err)
	}
	result.Alerts++
	if s.metrics != nil {
		s.metrics.AlertsRaised.WithLabelValues(string(a.Severity)).Inc()
	}
	s.notify(ctx, a)
	return nil
}

// notify fans an alert out to subscribers. Delivery is a log line; wiring a
// real channel (email, webhook) slots in here.
func (s *Service) notify(ctx context.Context, a *Alert) {
	subs, err := s.subs.ListByBusiness(ctx, a.BusinessID)
	if err != nil {
		s.logger.Warn("subscription lookup failed", "business_id", a.BusinessID.String(), "error", err)
		return
	}
	for _, sub := range subs {
		s.logger.Info("change alert",
			"business_id", a.BusinessID.String(),
			"business_name", a.BusinessName,
			"change_type", string(a.ChangeType),
			"severity", string(a.Severity),
			"significance", a.Significance,
			"contact", sub.Contact)
	}
}

func alertMessage(e *ChangeEvent) string {
	return e.BusinessName + ": " + string(e.ChangeType) + " changed from " +
		orUnset(e.OldValue) + " to " + orUnset(e.NewValue)
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

// Subscribe registers a contact for one business's alerts. The reference is
// soft, so subscribing to an unknown business succeeds and simply never
// fires.
func (s *Service) Subscribe(ctx context.Context, businessID domain.BusinessID, contact string) (*Subscription, error) {
	if strings.TrimSpace(contact) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "contact is required")
	}
	sub := &Subscription{
		ID:         domain.NewSubscriptionID(),
		BusinessID: businessID,
		Contact:    strings.TrimSpace(contact),
		CreatedAt:  s.now(),
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "store subscription", err)
	}
	return sub, nil
}

// Unsubscribe removes a subscription. Removing one that does not exist is a
// no-op, never an error.
func (s *Service) Unsubscribe(ctx context.Context, id domain.SubscriptionID) error {
	if err := s.subs.Delete(ctx, id); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "delete subscription", err)
	}
	return nil
}

// RecentChanges builds the monitoring read model: latest events, their
// summary, per-type trends and recent alerts.
func (s *Service) RecentChanges(ctx context.Context, limit int) (*Report, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	events, err := s.events.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list change events", err)
	}
	alerts, err := s.alerts.ListRecent(ctx, defaultAlertLimit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list alerts", err)
	}
	trends, err := s.trends(ctx)
	if err != nil {
		return nil, err
	}
	return &Report{
		RecentChanges:   events,
		ChangeSummary:   s.summarize(events),
		TrendingChanges: trends,
		Alerts:          alerts,
	}, nil
}

func (s *Service) summarize(events []*ChangeEvent) Summary {
	sum := Summary{Total: len(events)}
	updated := make(map[domain.BusinessID]bool)
	for _, e := range events {
		if e.NewBusiness {
			sum.NewBusinesses++
			continue
		}
		if e.Significance >= s.threshold {
			sum.Significant++
		}
		updated[e.BusinessID] = true
	}
	sum.UpdatedBusinesses = len(updated)
	return sum
}

// trends compares each change-type's frequency in the current window against
// the previous one.
func (s *Service) trends(ctx context.Context) ([]Trend, error) {
	now := s.now()
	events, err := s.events.ListSince(ctx, now.Add(-2*trendWindow))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "list change events", err)
	}

	current := make(map[domain.ChangeType]int)
	previous := make(map[domain.ChangeType]int)
	cutoff := now.Add(-trendWindow)
	for _, e := range events {
		if e.DetectedAt.Before(cutoff) {
			previous[e.ChangeType]++
		} else {
			current[e.ChangeType]++
		}
	}

	var out []Trend
	for _, t := range []domain.ChangeType{
		domain.ChangeDigitalScore, domain.ChangeRegion, domain.ChangeSector,
		domain.ChangePremium, domain.ChangeVerification, domain.ChangeOther,
	} {
		cur, prev := current[t], previous[t]
		if cur == 0 && prev == 0 {
			continue
		}
		direction := domain.TrendFlat
		switch {
		case cur > prev:
			direction = domain.TrendUp
		case cur < prev:
			direction = domain.TrendDown
		}
		out = append(out, Trend{
			ChangeType:    t,
			CurrentCount:  cur,
			PreviousCount: prev,
			Direction:     direction,
		})
	}
	return out, nil
}
