package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizintel/internal/leads"
	"bizintel/internal/reviews"
	"bizintel/internal/transport/http/shared"
	"bizintel/pkg/domain"
)

// CommunityHandler serves leads and reviews.
type CommunityHandler struct {
	logger  *slog.Logger
	leads   *leads.Service
	reviews *reviews.Service
}

func NewCommunityHandler(logger *slog.Logger, leadSvc *leads.Service, reviewSvc *reviews.Service) *CommunityHandler {
	return &CommunityHandler{logger: logger, leads: leadSvc, reviews: reviewSvc}
}

func (h *CommunityHandler) Register(r chi.Router) {
	r.Post("/lead", h.handleCreateLead)
	r.Post("/review", h.handleCreateReview)
	r.Get("/reviews/{biz_id}", h.handleListReviews)
}

// RegisterAdmin mounts the routes that require an operator token.
func (h *CommunityHandler) RegisterAdmin(r chi.Router) {
	r.Get("/leads", h.handleListLeads)
}

type createLeadRequest struct {
	BusinessID string `json:"business_id"`
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	Message    string `json:"message"`
}

type leadResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Contact    string    `json:"contact"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toLeadResponse(l *leads.Lead) leadResponse {
	return leadResponse{
		ID:         l.ID.String(),
		BusinessID: l.BusinessID.String(),
		Name:       l.Name,
		Contact:    l.Contact,
		Message:    l.Message,
		CreatedAt:  l.CreatedAt,
	}
}

func (h *CommunityHandler) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	businessID, err := domain.ParseBusinessID(req.BusinessID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	l, err := h.leads.Create(r.Context(), businessID, req.Name, req.Contact, req.Message)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toLeadResponse(l))
}

func (h *CommunityHandler) handleListLeads(w http.ResponseWriter, r *http.Request) {
	list, err := h.leads.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]leadResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toLeadResponse(l))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"leads": out, "count": len(out)})
}

type createReviewRequest struct {
	BusinessID string `json:"business_id"`
	Author     string `json:"author"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

type reviewResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Author     string    `json:"author"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *CommunityHandler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	businessID, err := domain.ParseBusinessID(req.BusinessID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rev, err := h.reviews.Create(r.Context(), businessID, req.Author, req.Rating, req.Comment)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, reviewResponse{
		ID:         rev.ID.String(),
		BusinessID: rev.BusinessID.String(),
		Author:     rev.Author,
		Rating:     rev.Rating,
		Comment:    rev.Comment,
		CreatedAt:  rev.CreatedAt,
	})
}

type reviewsListResponse struct {
	BusinessID    string           `json:"business_id"`
	Count         int              `json:"count"`
	AverageRating float64          `json:"average_rating"`
	Reviews       []reviewResponse `json:"reviews"`
}

func (h *CommunityHandler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	businessID, err := domain.ParseBusinessID(chi.URLParam(r, "biz_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	summary, err := h.reviews.Summarize(r.Context(), businessID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resp := reviewsListResponse{
		BusinessID:    businessID.String(),
		Count:         summary.Count,
		AverageRating: summary.AverageRating,
		Reviews:       make([]reviewResponse, 0, summary.Count),
	}
	for _, rev := range summary.Reviews {
		resp.Reviews = append(resp.Reviews, reviewResponse{
			ID:         rev.ID.String(),
			BusinessID: rev.BusinessID.String(),
			Author:     rev.Author,
			Rating:     rev.Rating,
			Comment:    rev.Comment,
			CreatedAt:  rev.CreatedAt,
		})
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}
