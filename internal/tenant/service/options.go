package service

import (
	"log/slog"

	"tenantry/internal/platform/tracer"
	tenantmetrics "tenantry/internal/tenant/metrics"
	"tenantry/pkg/platform/audit"
)

// serviceConfig holds optional dependencies for the service.
type serviceConfig struct {
	logger  *slog.Logger
	audit   *audit.Logger
	metrics *tenantmetrics.Metrics
	tracer  tracer.Tracer
	tx      StoreTx
}

// Option configures a service.
type Option func(c *serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(c *serviceConfig) {
		c.audit = l
	}
}

func WithMetrics(m *tenantmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *serviceConfig) {
		c.tracer = t
	}
}

// WithTx sets the transactional boundary. Defaults to an in-memory mutex.
func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}
