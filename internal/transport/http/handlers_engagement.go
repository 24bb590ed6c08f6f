package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizintel/internal/engagement"
	"bizintel/internal/transport/http/shared"
	"bizintel/pkg/domain"
)

// EngagementHandler serves event tracking and the analytics read model.
type EngagementHandler struct {
	logger  *slog.Logger
	tracker *engagement.Tracker
}

func NewEngagementHandler(logger *slog.Logger, tracker *engagement.Tracker) *EngagementHandler {
	return &EngagementHandler{logger: logger, tracker: tracker}
}

func (h *EngagementHandler) Register(r chi.Router) {
	r.Post("/track", h.handleTrack)
	r.Get("/analytics", h.handleAnalytics)
}

type trackRequest struct {
	BusinessID string `json:"business_id"`
	Action     string `json:"action"`
}

func (h *EngagementHandler) handleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req trackRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	businessID, err := domain.ParseBusinessID(req.BusinessID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	action, err := domain.ParseEngagementAction(req.Action)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// Past input validation the operation cannot fail; the tracker absorbs
	// backend errors.
	h.tracker.Track(ctx, businessID, action)
	w.WriteHeader(http.StatusAccepted)
}

type analyticsRow struct {
	BusinessID     string  `json:"business_id"`
	Name           string  `json:"name"`
	BIID           string  `json:"bi_id"`
	Views          int64   `json:"views"`
	Clicks         int64   `json:"clicks"`
	EngagementRate float64 `json:"engagement_rate"`
}

type analyticsResponse struct {
	TotalViews     int64          `json:"total_views"`
	TotalClicks    int64          `json:"total_clicks"`
	EngagementRate float64        `json:"engagement_rate"`
	Businesses     []analyticsRow `json:"businesses"`
}

func (h *EngagementHandler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.tracker.Analytics(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resp := analyticsResponse{
		TotalViews:     report.TotalViews,
		TotalClicks:    report.TotalClicks,
		EngagementRate: report.EngagementRate,
		Businesses:     make([]analyticsRow, 0, len(report.Businesses)),
	}
	for _, b := range report.Businesses {
		resp.Businesses = append(resp.Businesses, analyticsRow{
			BusinessID:     b.BusinessID.String(),
			Name:           b.Name,
			BIID:           b.BIID.String(),
			Views:          b.Views,
			Clicks:         b.Clicks,
			EngagementRate: b.EngagementRate,
		})
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}
