package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"bizintel/internal/engagement"
	"bizintel/internal/platform/middleware"
	"bizintel/internal/registry"
	"bizintel/internal/reviews"
	"bizintel/internal/transport/http/shared"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

// RegistryHandler serves business registration, profiles and search.
type RegistryHandler struct {
	logger   *slog.Logger
	registry *registry.Service
	reviews  *reviews.Service
	tracker  *engagement.Tracker
}

func NewRegistryHandler(logger *slog.Logger, reg *registry.Service, reviewSvc *reviews.Service, tracker *engagement.Tracker) *RegistryHandler {
	return &RegistryHandler{logger: logger, registry: reg, reviews: reviewSvc, tracker: tracker}
}

type createBusinessRequest struct {
	Name         string `json:"name"`
	Region       string `json:"region"`
	Sector       string `json:"sector"`
	Formality    string `json:"formality"`
	DigitalScore *int   `json:"digital_score"`
	Premium      bool   `json:"premium"`
}

type updateBusinessRequest struct {
	Name         *string `json:"name"`
	Region       *string `json:"region"`
	Sector       *string `json:"sector"`
	Formality    *string `json:"formality"`
	DigitalScore *int    `json:"digital_score"`
	Premium      *bool   `json:"premium"`
}

type businessResponse struct {
	ID           string    `json:"id"`
	BIID         string    `json:"bi_id"`
	Name         string    `json:"name"`
	Region       string    `json:"region,omitempty"`
	Sector       string    `json:"sector,omitempty"`
	Formality    string    `json:"formality,omitempty"`
	DigitalScore *int      `json:"digital_score,omitempty"`
	Premium      bool      `json:"premium"`
	Verified     bool      `json:"verified"`
	Claimed      bool      `json:"claimed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type profileResponse struct {
	businessResponse
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
	Views         int64   `json:"views"`
	Clicks        int64   `json:"clicks"`
}

func toBusinessResponse(b *registry.Business) businessResponse {
	return businessResponse{
		ID:           b.ID.String(),
		BIID:         b.BIID.String(),
		Name:         b.Name,
		Region:       b.Region,
		Sector:       b.Sector,
		Formality:    b.Formality.String(),
		DigitalScore: b.DigitalScore,
		Premium:      b.Premium,
		Verified:     b.Verified,
		Claimed:      b.Claimed,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func (h *RegistryHandler) Register(r chi.Router) {
	r.Post("/business", h.handleCreate)
	r.Get("/profile/{id}", h.handleProfile)
	r.Put("/business/{id}", h.handleUpdate)
	r.Get("/search", h.handleSearch)
}

// RegisterAdmin mounts the routes that require an operator token.
func (h *RegistryHandler) RegisterAdmin(r chi.Router) {
	r.Delete("/business/{id}", h.handleDelete)
	r.Post("/admin/feature", h.handleFeature)
}

func (h *RegistryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createBusinessRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	formality, err := domain.ParseFormality(req.Formality)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	b, err := h.registry.Create(ctx, registry.CreateParams{
		Name:         req.Name,
		Region:       req.Region,
		Sector:       req.Sector,
		Formality:    formality,
		DigitalScore: req.DigitalScore,
		Premium:      req.Premium,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "business registration rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toBusinessResponse(b))
}

func (h *RegistryHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseBusinessID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	b, err := h.registry.Get(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := profileResponse{businessResponse: toBusinessResponse(b)}
	if summary, err := h.reviews.Summarize(ctx, id); err == nil {
		resp.AverageRating = summary.AverageRating
		resp.ReviewCount = summary.Count
	}
	if stats, err := h.tracker.Stats(ctx, id); err == nil {
		resp.Views = stats.Views
		resp.Clicks = stats.Clicks
	}

	// Opening a profile counts as a view; best effort, never blocks the page.
	// The count reported above excludes this visit.
	h.tracker.Track(ctx, id, domain.ActionView)

	shared.WriteJSON(w, http.StatusOK, resp)
}

func (h *RegistryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseBusinessID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateBusinessRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	params := registry.UpdateParams{
		Name:         req.Name,
		Region:       req.Region,
		Sector:       req.Sector,
		DigitalScore: req.DigitalScore,
		Premium:      req.Premium,
	}
	if req.Formality != nil {
		formality, err := domain.ParseFormality(*req.Formality)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		params.Formality = &formality
	}

	b, err := h.registry.Update(ctx, id, params)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toBusinessResponse(b))
}

func (h *RegistryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseBusinessID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.registry.Delete(ctx, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "business deleted",
		"request_id", middleware.GetRequestID(ctx),
		"business_id", id.String(),
		"admin", middleware.GetAdminUser(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

type searchResponse struct {
	Results []businessResponse `json:"results"`
	Count   int                `json:"count"`
}

func (h *RegistryHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := registry.SearchFilter{
		Query:  q.Get("q"),
		Region: q.Get("region"),
		Sector: q.Get("sector"),
		BIID:   q.Get("bi_id"),
	}
	if raw := q.Get("min_score"); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "min_score must be an integer"))
			return
		}
		filter.MinScore = &score
	}
	if raw := q.Get("premium"); raw != "" {
		premium, err := strconv.ParseBool(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "premium must be a boolean"))
			return
		}
		filter.Premium = &premium
	}
	if raw := q.Get("verified"); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "verified must be a boolean"))
			return
		}
		filter.Verified = &verified
	}

	results, err := h.registry.Search(ctx, filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resp := searchResponse{Results: make([]businessResponse, 0, len(results)), Count: len(results)}
	for _, b := range results {
		resp.Results = append(resp.Results, toBusinessResponse(b))
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

type featureRequest struct {
	BusinessID string `json:"business_id"`
}

func (h *RegistryHandler) handleFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req featureRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseBusinessID(req.BusinessID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	b, err := h.registry.Feature(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "business featured",
		"request_id", middleware.GetRequestID(ctx),
		"business_id", id.String(),
		"admin", middleware.GetAdminUser(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, toBusinessResponse(b))
}
