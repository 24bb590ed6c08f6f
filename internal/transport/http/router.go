// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and translate errors through the shared helpers; no business logic
// lives here.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bizintel/internal/admin"
	"bizintel/internal/claims"
	"bizintel/internal/engagement"
	"bizintel/internal/leads"
	"bizintel/internal/monitor"
	"bizintel/internal/platform/middleware"
	"bizintel/internal/registry"
	"bizintel/internal/reviews"
	"bizintel/internal/transport/http/shared"
	"bizintel/internal/verification"
)

// Services bundles everything the router exposes.
type Services struct {
	Registry     *registry.Service
	Claims       *claims.Service
	Verification *verification.Service
	Engagement   *engagement.Tracker
	Monitor      *monitor.Service
	Leads        *leads.Service
	Reviews      *reviews.Service
	Admin        *admin.Service
}

// HealthCheck reports backend liveness; a nil check is skipped.
type HealthCheck func(ctx context.Context) error

// NewRouter wires every endpoint. Public routes carry the base middleware
// chain; operator routes additionally require a valid bearer token.
func NewRouter(logger *slog.Logger, svcs Services, validator middleware.TokenValidator, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	registryHandler := NewRegistryHandler(logger, svcs.Registry, svcs.Reviews, svcs.Engagement)
	claimsHandler := NewClaimsHandler(logger, svcs.Claims)
	verifyHandler := NewVerificationHandler(logger, svcs.Verification)
	engagementHandler := NewEngagementHandler(logger, svcs.Engagement)
	monitorHandler := NewMonitorHandler(logger, svcs.Monitor)
	communityHandler := NewCommunityHandler(logger, svcs.Leads, svcs.Reviews)
	adminHandler := NewAdminHandler(logger, svcs.Admin)

	registryHandler.Register(r)
	claimsHandler.Register(r)
	verifyHandler.Register(r)
	engagementHandler.Register(r)
	monitorHandler.Register(r)
	communityHandler.Register(r)
	adminHandler.Register(r)

	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAdmin(validator, logger))
		registryHandler.RegisterAdmin(g)
		claimsHandler.RegisterAdmin(g)
		communityHandler.RegisterAdmin(g)
		adminHandler.RegisterAdmin(g)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
