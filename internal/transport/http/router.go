// Package httptransport assembles the HTTP surface: middleware, probes,
// metrics, and the tenant and user routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenantry/internal/platform/health"
	"tenantry/pkg/platform/middleware/auth"
	"tenantry/pkg/platform/middleware/metadata"
	"tenantry/pkg/platform/middleware/request"
	"tenantry/pkg/validation"
)

// RouteRegistrar is implemented by the feature handlers.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// PublicRouteRegistrar exposes routes that do not require a bearer token.
type PublicRouteRegistrar interface {
	RegisterPublic(r chi.Router)
}

// Deps collects everything the router mounts.
type Deps struct {
	Logger    *slog.Logger
	Tokens    auth.TokenValidator
	Health    *health.Handler
	Latency   *request.Metrics
	Gatherer  prometheus.Gatherer
	Public    []PublicRouteRegistrar
	Protected []RouteRegistrar
	// TrustedProxies may set X-Forwarded-For / X-Real-IP.
	TrustedProxies []netip.Prefix
}

// NewRouter wires the middleware chain and mounts every handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(metadata.ClientMetadata(deps.TrustedProxies))
	r.Use(request.Logger(deps.Logger))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.ContentTypeJSON)
	if deps.Latency != nil {
		r.Use(request.Latency(deps.Latency, routePattern))
	}

	if deps.Health != nil {
		deps.Health.Register(r)
	}

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	for _, h := range deps.Public {
		h.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens, deps.Logger))
		for _, h := range deps.Protected {
			h.Register(r)
		}
	})

	return r
}

// routePattern labels latency by chi route template so ids don't explode
// metric cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
