package monitor

import (
	"context"
	"time"

	"bizintel/pkg/domain"
)

// EventStore is the append-only change-event log.
type EventStore interface {
	Save(ctx context.Context, e *ChangeEvent) error

	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]*ChangeEvent, error)

	// ListSince returns events detected at or after the cutoff, newest first.
	ListSince(ctx context.Context, since time.Time) ([]*ChangeEvent, error)
}

// AlertStore holds derived alerts. Alerts are rebuildable from the event log,
// so losing this store loses nothing authoritative.
type AlertStore interface {
	Save(ctx context.Context, a *Alert) error
	ListRecent(ctx context.Context, limit int) ([]*Alert, error)
}

// SubscriptionStore holds alert subscriptions.
type SubscriptionStore interface {
	Save(ctx context.Context, s *Subscription) error

	// Delete is idempotent; removing an unknown subscription is a no-op.
	Delete(ctx context.Context, id domain.SubscriptionID) error

	ListByBusiness(ctx context.Context, businessID domain.BusinessID) ([]*Subscription, error)
}
