package service

import (
	"log/slog"

	"tenantry/internal/platform/tracer"
	usermetrics "tenantry/internal/user/metrics"
	"tenantry/pkg/platform/audit"
)

// serviceConfig holds optional dependencies for the service.
type serviceConfig struct {
	logger  *slog.Logger
	audit   *audit.Logger
	metrics *usermetrics.Metrics
	tracer  tracer.Tracer
	tx      StoreTx
	hasher  Hasher
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

func WithMetrics(m *usermetrics.Metrics) Option {
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

// WithHasher sets the credential hasher. Defaults to bcrypt at its default cost.
func WithHasher(h Hasher) Option {
	return func(c *serviceConfig) {
		c.hasher = h
	}
}
