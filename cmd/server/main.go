package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tenantry/internal/platform/config"
	"tenantry/internal/platform/database"
	"tenantry/internal/platform/health"
	"tenantry/internal/platform/logger"
	"tenantry/internal/platform/tracer"
	"tenantry/internal/seeder"
	tenanthandler "tenantry/internal/tenant/handler"
	tenantmetrics "tenantry/internal/tenant/metrics"
	tenantservice "tenantry/internal/tenant/service"
	tenantstore "tenantry/internal/tenant/store/tenant"
	"tenantry/internal/token"
	httptransport "tenantry/internal/transport/http"
	userhandler "tenantry/internal/user/handler"
	usermetrics "tenantry/internal/user/metrics"
	userservice "tenantry/internal/user/service"
	"tenantry/internal/user/store/directory"
	userstore "tenantry/internal/user/store/user"
	"tenantry/pkg/platform/audit"
	auditstore "tenantry/pkg/platform/audit/store/postgres"
	"tenantry/pkg/platform/middleware/metadata"
	"tenantry/pkg/platform/middleware/request"
	"tenantry/pkg/platform/tx"
	"tenantry/pkg/secrets"
	"tenantry/pkg/session"
)

const (
	tokenIssuer   = "tenantry"
	tokenAudience = "tenantry-api"
)

// stores groups the persistence layer selected at startup.
type stores struct {
	tenants   tenantservice.TenantStore
	users     userservice.UserStore
	directory interface {
		userservice.Directory
		seeder.Directory
	}
	tx     userservice.StoreTx
	audit  audit.Emitter
	pool   *database.Pool
	memory bool
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing tenantry",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize stores", "error", err)
		os.Exit(1)
	}
	defer func() {
		if st.pool != nil {
			if err := st.pool.Close(); err != nil {
				log.Error("failed to close database", "error", err)
			}
		}
	}()

	auditLogger := audit.NewLogger(log, st.audit)
	otel := tracer.NewOTel("tenantry")

	tenants := tenantservice.New(st.tenants,
		tenantservice.WithLogger(log),
		tenantservice.WithAuditLogger(auditLogger),
		tenantservice.WithMetrics(tenantmetrics.New()),
		tenantservice.WithTracer(otel),
		tenantservice.WithTx(st.tx),
	)
	users := userservice.New(st.users, st.directory,
		userservice.WithLogger(log),
		userservice.WithAuditLogger(auditLogger),
		userservice.WithMetrics(usermetrics.New()),
		userservice.WithTracer(otel),
		userservice.WithTx(st.tx),
		userservice.WithHasher(secrets.NewBcrypt(cfg.BcryptCost)),
	)
	tokens := token.NewService(cfg.JWTSigningKey, tokenIssuer, tokenAudience, cfg.TokenTTL)

	if st.memory && cfg.Environment == "development" {
		seedDemo(ctx, st, users, tokens, log)
	}

	probes := health.New(cfg.Environment)
	if st.pool != nil {
		probes.RegisterCheck("database", st.pool.Check)
		prometheus.MustRegister(st.pool.Collector())
	}

	tenantRoutes := tenanthandler.New(tenants, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Tokens:         tokens,
		Health:         probes,
		Latency:        request.NewMetrics(),
		Public:         []httptransport.PublicRouteRegistrar{tenantRoutes},
		Protected:      []httptransport.RouteRegistrar{tenantRoutes, userhandler.New(users, log)},
		TrustedProxies: metadata.ParseTrustedProxies(cfg.TrustedProxies),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return
	}

	log.Info("server stopped")
}

// openStores selects Postgres when DATABASE_URL is set and in-memory stores
// otherwise.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	pool, err := database.Open(ctx, database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, err
	}

	if pool == nil {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		dir := directory.NewInMemory()
		return &stores{
			tenants:   tenantstore.NewInMemory(),
			users:     userstore.NewInMemory(dir),
			directory: dir,
			tx:        tx.NewInMemory(),
			memory:    true,
		}, nil
	}

	if err := database.Migrate(ctx, pool.DB()); err != nil {
		pool.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, err
	}
	log.Info("connected to postgres")

	return &stores{
		tenants:   tenantstore.NewPostgres(pool.DB()),
		users:     userstore.NewPostgres(pool.DB()),
		directory: directory.NewPostgres(pool.DB()),
		tx:        tx.NewPostgres(pool.DB()),
		audit:     auditstore.New(pool.DB()),
		pool:      pool,
	}, nil
}

// seedDemo fills in-memory stores and logs a bearer token for the demo admin.
func seedDemo(ctx context.Context, st *stores, users *userservice.Service, tokens *token.Service, log *slog.Logger) {
	result, err := seeder.New(st.tenants, st.directory, users, log).SeedAll(ctx)
	if err != nil {
		log.Error("failed to seed demo data", "error", err)
		return
	}

	bearer, err := tokens.Issue(ctx, session.Caller{
		UserID:       result.AdminID,
		TenantID:     result.TenantID,
		Capabilities: []session.Capability{session.CapabilityManageTenant},
		AccountClass: session.AccountClassAgent,
	})
	if err != nil {
		log.Error("failed to issue demo token", "error", err)
		return
	}
	log.Info("demo admin token issued", "tenant_id", result.TenantID.String(), "token", bearer)
}
