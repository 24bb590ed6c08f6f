package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizintel/internal/admin"
	"bizintel/internal/platform/middleware"
	"bizintel/internal/transport/http/shared"
)

// AdminHandler serves operator login and the dashboard.
type AdminHandler struct {
	logger *slog.Logger
	admin  *admin.Service
}

func NewAdminHandler(logger *slog.Logger, svc *admin.Service) *AdminHandler {
	return &AdminHandler{logger: logger, admin: svc}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/token", h.handleLogin)
}

// RegisterAdmin mounts the routes that require an operator token.
func (h *AdminHandler) RegisterAdmin(r chi.Router) {
	r.Get("/admin", h.handleDashboard)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *AdminHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.admin.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", middleware.GetRequestID(ctx),
			"username", req.Username,
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   int64(res.ExpiresIn.Seconds()),
	})
}

type dashboardResponse struct {
	TotalBusinesses    int `json:"total_businesses"`
	VerifiedBusinesses int `json:"verified_businesses"`
	TotalClaims        int `json:"total_claims"`
	PendingClaims      int `json:"pending_claims"`
	Leads              int `json:"leads"`
}

func (h *AdminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.DashboardStats(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, dashboardResponse{
		TotalBusinesses:    stats.TotalBusinesses,
		VerifiedBusinesses: stats.VerifiedBusinesses,
		TotalClaims:        stats.TotalClaims,
		PendingClaims:      stats.PendingClaims,
		Leads:              stats.Leads,
	})
}
