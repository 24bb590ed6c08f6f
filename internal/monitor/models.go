// Package monitor watches the registry for field changes, scores their
// significance, and derives alerts, trends and the recent-changes read model.
package monitor

import (
	"time"

	"bizintel/pkg/domain"
)

// ChangeEvent is one detected difference between two observations of a
// business. Events are append-only; the monitor never rewrites history.
type ChangeEvent struct {
	ID           domain.ChangeEventID
	BusinessID   domain.BusinessID
	BusinessName string
	ChangeType   domain.ChangeType
	OldValue     string
	NewValue     string

	// Significance is the 0-100 score the alerting policy assigned.
	Significance int
	Severity     domain.Severity

	// NewBusiness marks the synthetic event recorded when a business first
	// appears in a sweep.
	NewBusiness bool

	DetectedAt time.Time
}

// Alert is derived from a ChangeEvent whose significance crossed the
// configured threshold.
type Alert struct {
	ID           domain.AlertID
	BusinessID   domain.BusinessID
	BusinessName string
	ChangeType   domain.ChangeType
	Severity     domain.Severity
	Significance int
	Message      string
	RaisedAt     time.Time
}

// Subscription registers interest in one business's alerts. The business
// reference is soft: subscribing to an unknown or later-deleted business is
// allowed and simply never fires.
type Subscription struct {
	ID         domain.SubscriptionID
	BusinessID domain.BusinessID
	Contact    string
	CreatedAt  time.Time
}

// Summary aggregates a set of change events.
type Summary struct {
	Total             int
	Significant       int
	NewBusinesses     int
	UpdatedBusinesses int
}

// Trend compares one change-type's frequency across the current and previous
// observation windows.
type Trend struct {
	ChangeType    domain.ChangeType
	CurrentCount  int
	PreviousCount int
	Direction     domain.TrendDirection
}

// Report is the GET /changes read model.
type Report struct {
	RecentChanges   []*ChangeEvent
	ChangeSummary   Summary
	TrendingChanges []Trend
	Alerts          []*Alert
}

// SweepResult describes one monitor pass for logging and tests.
type SweepResult struct {
	Observed   int
	Changes    int
	Alerts     int
	NewRecords int
	Removed    int
}
