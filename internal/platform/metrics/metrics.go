package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	BusinessesCreated prometheus.Counter
	ClaimsSubmitted   prometheus.Counter
	ClaimsApproved    prometheus.Counter
	ClaimConflicts    prometheus.Counter
	Verifications     *prometheus.CounterVec
	EventsTracked     *prometheus.CounterVec
	TrackFailures     prometheus.Counter
	ChangesDetected   *prometheus.CounterVec
	AlertsRaised      *prometheus.CounterVec
	SweepsSkipped     prometheus.Counter
	SweepDuration     prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		BusinessesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizintel_businesses_created_total",
			Help: "Total number of businesses registered",
		}),
		ClaimsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizintel_claims_submitted_total",
			Help: "Total number of ownership claims submitted",
		}),
		ClaimsApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizintel_claims_approved_total",
			Help: "Total number of ownership claims approved",
		}),
		ClaimConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizintel_claim_conflicts_total",
			Help: "Approval attempts rejected because the business was already claimed",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizintel_verifications_total",
			Help: "BI ID verification lookups by outcome",
		}, []string{"outcome"}),
		EventsTracked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizintel_engagement_events_total",
			Help: "Engagement events recorded by action",
		}, []string{"action"}),
		TrackFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizintel_engagement_track_failures_total",
			Help: "Engagement events dropped at the best-effort boundary",
		}),
		ChangesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizintel_changes_detected_total",
			Help: "Business field changes detected by the monitor, by type",
		}, []string{"change_type"}),
		AlertsRaised: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizintel_alerts_raised_total",
			Help: "Alerts derived from significant changes, by severity",
		}, []string{"severity"}),
		SweepsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bizintel_monitor_sweeps_skipped_total",
			Help: "Monitor ticks skipped because the previous sweep was still running",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizintel_monitor_sweep_duration_seconds",
			Help:    "Duration of change-monitor sweeps",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}
