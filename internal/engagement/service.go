package engagement

import (
	"context"
	"log/slog"
	"sort"

	"bizintel/internal/platform/metrics"
	"bizintel/internal/registry"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

// BusinessLister is the slice of the registry the analytics report walks.
type BusinessLister interface {
	List(ctx context.Context) ([]*registry.Business, error)
}

// Tracker records engagement events and serves the analytics read model.
type Tracker struct {
	counters CounterStore
	registry BusinessLister
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewTracker(counters CounterStore, reg BusinessLister, m *metrics.Metrics, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{counters: counters, registry: reg, metrics: m, logger: logger}
}

// Track records one event. It is fire-and-forget by contract: a counter store
// failure is logged and counted but never surfaced, because tracking must not
// break the page view that triggered it. The business reference is soft;
// events for unknown businesses are accepted and simply never show up in
// analytics.
func (t *Tracker) Track(ctx context.Context, businessID domain.BusinessID, action domain.EngagementAction) {
	if err := t.counters.Incr(ctx, businessID, action); err != nil {
		t.logger.Warn("engagement increment dropped",
			"business_id", businessID.String(),
			"action", string(action),
			"error", err)
		if t.metrics != nil {
			t.metrics.TrackFailures.Inc()
		}
		return
	}
	if t.metrics != nil {
		t.metrics.EventsTracked.WithLabelValues(string(action)).Inc()
	}
}

// Stats returns one business's counters. A business nobody has viewed yet
// reports zeros, not an error.
func (t *Tracker) Stats(ctx context.Context, businessID domain.BusinessID) (*Stats, error) {
	views, clicks, err := t.counters.Get(ctx, businessID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "read engagement counters", err)
	}
	return &Stats{
		BusinessID:     businessID,
		Views:          views,
		Clicks:         clicks,
		EngagementRate: Rate(views, clicks),
	}, nil
}

// Analytics builds the registry-wide report, most engaged businesses first.
func (t *Tracker) Analytics(ctx context.Context) (*Report, error) {
	businesses, err := t.registry.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Businesses: make([]BusinessBreakdown, 0, len(businesses))}
	for _, b := range businesses {
		views, clicks, err := t.counters.Get(ctx, b.ID)
		if err != nil {
			return nil, dErrors.Wrap(dErrors.CodeInternal, "read engagement counters", err)
		}
		report.TotalViews += views
		report.TotalClicks += clicks
		report.Businesses = append(report.Businesses, BusinessBreakdown{
			BusinessID:     b.ID,
			Name:           b.Name,
			BIID:           b.BIID,
			Views:          views,
			Clicks:         clicks,
			EngagementRate: Rate(views, clicks),
		})
	}
	report.EngagementRate = Rate(report.TotalViews, report.TotalClicks)

	sort.SliceStable(report.Businesses, func(i, j int) bool {
		return report.Businesses[i].Views+report.Businesses[i].Clicks >
			report.Businesses[j].Views+report.Businesses[j].Clicks
	})
	return report, nil
}
