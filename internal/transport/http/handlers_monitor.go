package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"bizintel/internal/monitor"
	"bizintel/internal/transport/http/shared"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

// MonitorHandler serves the change feed and alert subscriptions.
type MonitorHandler struct {
	logger  *slog.Logger
	monitor *monitor.Service
}

func NewMonitorHandler(logger *slog.Logger, svc *monitor.Service) *MonitorHandler {
	return &MonitorHandler{logger: logger, monitor: svc}
}

func (h *MonitorHandler) Register(r chi.Router) {
	r.Get("/changes", h.handleChanges)
	r.Post("/changes/subscribe", h.handleSubscribe)
	r.Delete("/changes/subscribe/{id}", h.handleUnsubscribe)
}

type changeEventResponse struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name"`
	ChangeType   string    `json:"change_type"`
	OldValue     string    `json:"old_value"`
	NewValue     string    `json:"new_value"`
	Significance int       `json:"significance"`
	Severity     string    `json:"severity"`
	NewBusiness  bool      `json:"new_business,omitempty"`
	DetectedAt   time.Time `json:"detected_at"`
}

type changeSummaryResponse struct {
	Total             int `json:"total"`
	Significant       int `json:"significant"`
	NewBusinesses     int `json:"new_businesses"`
	UpdatedBusinesses int `json:"updated_businesses"`
}

type trendResponse struct {
	ChangeType    string `json:"change_type"`
	CurrentCount  int    `json:"current_count"`
	PreviousCount int    `json:"previous_count"`
	Direction     string `json:"direction"`
}

type alertResponse struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name"`
	ChangeType   string    `json:"change_type"`
	Severity     string    `json:"severity"`
	Significance int       `json:"significance"`
	Message      string    `json:"message"`
	RaisedAt     time.Time `json:"raised_at"`
}

type changesResponse struct {
	RecentChanges   []changeEventResponse `json:"recent_changes"`
	ChangeSummary   changeSummaryResponse `json:"change_summary"`
	TrendingChanges []trendResponse       `json:"trending_changes"`
	Alerts          []alertResponse       `json:"alerts"`
}

func (h *MonitorHandler) handleChanges(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	report, err := h.monitor.RecentChanges(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := changesResponse{
		RecentChanges:   make([]changeEventResponse, 0, len(report.RecentChanges)),
		TrendingChanges: make([]trendResponse, 0, len(report.TrendingChanges)),
		Alerts:          make([]alertResponse, 0, len(report.Alerts)),
		ChangeSummary: changeSummaryResponse{
			Total:             report.ChangeSummary.Total,
			Significant:       report.ChangeSummary.Significant,
			NewBusinesses:     report.ChangeSummary.NewBusinesses,
			UpdatedBusinesses: report.ChangeSummary.UpdatedBusinesses,
		},
	}
	for _, e := range report.RecentChanges {
		resp.RecentChanges = append(resp.RecentChanges, changeEventResponse{
			ID:           e.ID.String(),
			BusinessID:   e.BusinessID.String(),
			BusinessName: e.BusinessName,
			ChangeType:   string(e.ChangeType),
			OldValue:     e.OldValue,
			NewValue:     e.NewValue,
			Significance: e.Significance,
			Severity:     string(e.Severity),
			NewBusiness:  e.NewBusiness,
			DetectedAt:   e.DetectedAt,
		})
	}
	for _, t := range report.TrendingChanges {
		resp.TrendingChanges = append(resp.TrendingChanges, trendResponse{
			ChangeType:    string(t.ChangeType),
			CurrentCount:  t.CurrentCount,
			PreviousCount: t.PreviousCount,
			Direction:     string(t.Direction),
		})
	}
	for _, a := range report.Alerts {
		resp.Alerts = append(resp.Alerts, alertResponse{
			ID:           a.ID.String(),
			BusinessID:   a.BusinessID.String(),
			BusinessName: a.BusinessName,
			ChangeType:   string(a.ChangeType),
			Severity:     string(a.Severity),
			Significance: a.Significance,
			Message:      a.Message,
			RaisedAt:     a.RaisedAt,
		})
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

type subscribeRequest struct {
	BusinessID string `json:"business_id"`
	Contact    string `json:"contact"`
}

type subscribeResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Contact    string    `json:"contact"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *MonitorHandler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	businessID, err := domain.ParseBusinessID(req.BusinessID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	sub, err := h.monitor.Subscribe(r.Context(), businessID, req.Contact)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, subscribeResponse{
		ID:         sub.ID.String(),
		BusinessID: sub.BusinessID.String(),
		Contact:    sub.Contact,
		CreatedAt:  sub.CreatedAt,
	})
}

func (h *MonitorHandler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseSubscriptionID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.monitor.Unsubscribe(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
