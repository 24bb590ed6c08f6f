package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizintel/internal/claims"
	"bizintel/internal/platform/middleware"
	"bizintel/internal/transport/http/shared"
	"bizintel/pkg/domain"
)

// ClaimsHandler serves the ownership claim workflow.
type ClaimsHandler struct {
	logger *slog.Logger
	claims *claims.Service
}

func NewClaimsHandler(logger *slog.Logger, svc *claims.Service) *ClaimsHandler {
	return &ClaimsHandler{logger: logger, claims: svc}
}

func (h *ClaimsHandler) Register(r chi.Router) {
	r.Post("/claim", h.handleSubmit)
}

// RegisterAdmin mounts the routes that require an operator token.
func (h *ClaimsHandler) RegisterAdmin(r chi.Router) {
	r.Get("/claims", h.handleList)
	r.Post("/claims/{id}/approve", h.handleApprove)
}

type submitClaimRequest struct {
	BusinessID string `json:"business_id"`
	OwnerName  string `json:"owner_name"`
	Contact    string `json:"contact"`
}

type claimResponse struct {
	ID          string     `json:"id"`
	BusinessID  string     `json:"business_id"`
	OwnerName   string     `json:"owner_name"`
	Contact     string     `json:"contact"`
	Approved    bool       `json:"approved"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
}

func toClaimResponse(c *claims.Claim) claimResponse {
	return claimResponse{
		ID:          c.ID.String(),
		BusinessID:  c.BusinessID.String(),
		OwnerName:   c.OwnerName,
		Contact:     c.Contact,
		Approved:    c.Approved,
		SubmittedAt: c.SubmittedAt,
		ApprovedAt:  c.ApprovedAt,
	}
}

func (h *ClaimsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitClaimRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	businessID, err := domain.ParseBusinessID(req.BusinessID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.claims.Submit(ctx, businessID, req.OwnerName, req.Contact)
	if err != nil {
		h.logger.WarnContext(ctx, "claim rejected",
			"request_id", middleware.GetRequestID(ctx),
			"business_id", businessID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toClaimResponse(c))
}

func (h *ClaimsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.claims.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]claimResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toClaimResponse(c))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"claims": out, "count": len(out)})
}

func (h *ClaimsHandler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseClaimID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	b, err := h.claims.Approve(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "claim approval failed",
			"request_id", middleware.GetRequestID(ctx),
			"claim_id", id.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "claim approved",
		"request_id", middleware.GetRequestID(ctx),
		"claim_id", id.String(),
		"business_id", b.ID.String(),
		"admin", middleware.GetAdminUser(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, toBusinessResponse(b))
}
