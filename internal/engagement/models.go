// Package engagement counts profile views and clicks and turns them into
// the analytics read model. Tracking is best effort: a lost increment must
// never fail the request that carried it.
package engagement

import (
	"bizintel/pkg/domain"
)

// Stats is one business's raw counters plus the derived rate.
type Stats struct {
	BusinessID domain.BusinessID
	Views      int64
	Clicks     int64

	// EngagementRate is clicks divided by views, 0 when there are no views.
	EngagementRate float64
}

// BusinessBreakdown is one row of the analytics report.
type BusinessBreakdown struct {
	BusinessID     domain.BusinessID
	Name           string
	BIID           domain.BIID
	Views          int64
	Clicks         int64
	EngagementRate float64
}

// Report aggregates engagement across the whole registry.
type Report struct {
	TotalViews     int64
	TotalClicks    int64
	EngagementRate float64
	Businesses     []BusinessBreakdown
}

// Rate computes clicks/views with the zero-views guard. Every derived rate in
// the package goes through here.
func Rate(views, clicks int64) float64 {
	if views == 0 {
		return 0
	}
	return float64(clicks) / float64(views)
}
