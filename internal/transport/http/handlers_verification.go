package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizintel/internal/transport/http/shared"
	"bizintel/internal/verification"
)

// VerificationHandler serves public BI ID verification.
type VerificationHandler struct {
	logger *slog.Logger
	verify *verification.Service
}

func NewVerificationHandler(logger *slog.Logger, svc *verification.Service) *VerificationHandler {
	return &VerificationHandler{logger: logger, verify: svc}
}

func (h *VerificationHandler) Register(r chi.Router) {
	r.Get("/verify-bi/{bi_id}", h.handleVerify)
	r.Post("/request-verification", h.handleRequestDetailed)
}

type verifyResponse struct {
	Valid            bool              `json:"valid"`
	Status           string            `json:"status,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	Message          string            `json:"message,omitempty"`
	Business         *businessResponse `json:"business,omitempty"`
	VerificationDate time.Time         `json:"verification_date"`
}

// handleVerify always answers 200: validity is data, not transport failure.
func (h *VerificationHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	res, err := h.verify.Verify(r.Context(), chi.URLParam(r, "bi_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	resp := verifyResponse{
		Valid:            res.Valid,
		Status:           res.Status,
		Reason:           string(res.Reason),
		Message:          res.Message,
		VerificationDate: res.VerificationDate,
	}
	if res.Business != nil {
		b := toBusinessResponse(res.Business)
		resp.Business = &b
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

type detailedVerificationRequest struct {
	BIID             string `json:"bi_id"`
	RequesterName    string `json:"requester_name"`
	RequesterContact string `json:"requester_contact"`
	Purpose          string `json:"purpose"`
}

type detailedVerificationResponse struct {
	ID           string    `json:"id"`
	BIID         string    `json:"bi_id"`
	BusinessName string    `json:"business_name,omitempty"`
	RequestedAt  time.Time `json:"requested_at"`
}

func (h *VerificationHandler) handleRequestDetailed(w http.ResponseWriter, r *http.Request) {
	var req detailedVerificationRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	rec, err := h.verify.RequestDetailed(r.Context(), req.BIID, req.RequesterName, req.RequesterContact, req.Purpose)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusAccepted, detailedVerificationResponse{
		ID:           rec.ID.String(),
		BIID:         rec.BIID.String(),
		BusinessName: rec.BusinessName,
		RequestedAt:  rec.RequestedAt,
	})
}
