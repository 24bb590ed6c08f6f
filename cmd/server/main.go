package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"bizintel/internal/admin"
	"bizintel/internal/claims"
	"bizintel/internal/engagement"
	"bizintel/internal/identifier"
	"bizintel/internal/leads"
	"bizintel/internal/monitor"
	"bizintel/internal/platform/config"
	"bizintel/internal/platform/httpserver"
	"bizintel/internal/platform/logger"
	"bizintel/internal/platform/metrics"
	"bizintel/internal/platform/postgres"
	platformredis "bizintel/internal/platform/redis"
	"bizintel/internal/registry"
	"bizintel/internal/reviews"
	httptransport "bizintel/internal/transport/http"
	"bizintel/internal/verification"
)

const adminTokenTTL = time.Hour

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Optional backends. Absent configuration falls back to the in-memory
	// stores, which is the single-process development mode.
	var health httptransport.HealthCheck

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var seqStore identifier.SequenceStore = identifier.NewInMemorySequenceStore()
	var counterStore engagement.CounterStore = engagement.NewInMemoryCounterStore()
	if redisClient != nil {
		seqStore = identifier.NewRedisSequenceStore(redisClient.Client)
		counterStore = engagement.NewRedisCounterStore(redisClient.Client)
		defer redisClient.Close()
		health = redisClient.Health
	}

	var registryStore registry.Store = registry.NewInMemoryStore()
	var claimStore claims.Store = claims.NewInMemoryStore()
	var eventStore monitor.EventStore = monitor.NewInMemoryEventStore()
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		registryStore = registry.NewPostgresStore(pool)

		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres (database/sql) open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		claimStore = claims.NewPostgresStore(db)
		eventStore = monitor.NewPostgresEventStore(db)

		poolHealth := pool.Ping
		redisHealth := health
		health = func(ctx context.Context) error {
			if err := poolHealth(ctx); err != nil {
				return err
			}
			if redisHealth != nil {
				return redisHealth(ctx)
			}
			return nil
		}
	}

	passwordHash := cfg.AdminPasswordHash
	if passwordHash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Error("hash admin password", "error", err)
			os.Exit(1)
		}
		passwordHash = string(hashed)
	}

	reg := registry.NewService(registryStore, identifier.NewIssuer(seqStore), m)
	claimSvc := claims.NewService(claimStore, reg, m)
	verifySvc := verification.NewService(reg, verification.NewInMemoryRequestStore(), m)
	tracker := engagement.NewTracker(counterStore, reg, m, log)
	monitorSvc := monitor.NewService(reg, eventStore, monitor.NewInMemoryAlertStore(),
		monitor.NewInMemorySubscriptionStore(), cfg.AlertThreshold, m, log)
	leadSvc := leads.NewService(leads.NewInMemoryStore())
	reviewSvc := reviews.NewService(reviews.NewInMemoryStore())
	tokens := admin.NewTokenService(cfg.JWTSigningKey, adminTokenTTL)
	adminSvc := admin.NewService(cfg.AdminUsername, passwordHash, tokens, reg, claimSvc, leadSvc)

	router := httptransport.NewRouter(log, httptransport.Services{
		Registry:     reg,
		Claims:       claimSvc,
		Verification: verifySvc,
		Engagement:   tracker,
		Monitor:      monitorSvc,
		Leads:        leadSvc,
		Reviews:      reviewSvc,
		Admin:        adminSvc,
	}, admin.NewTokenServiceAdapter(tokens), health)

	srv := httpserver.New(cfg.Addr, router, cfg.ReadHeaderTimeout)
	poller := monitor.NewPoller(monitorSvc, cfg.PollInterval, m, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := poller.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
