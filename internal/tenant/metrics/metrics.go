package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TenantCreated  prometheus.Counter
	TenantModified *prometheus.CounterVec
	AuthzDenied    prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the tenant metrics on reg. Tests pass a fresh
// registry so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TenantCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tenantry_tenants_created_total",
			Help: "Total number of tenants created",
		}),
		TenantModified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_tenants_modified_total",
			Help: "Total number of tenant modifications, labeled by resulting status",
		}, []string{"status"}),
		AuthzDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "tenantry_tenant_authorization_denied_total",
			Help: "Total number of tenant operations rejected by the manage-tenant policy",
		}),
	}
}

func (m *Metrics) IncrementTenantCreated() {
	m.TenantCreated.Inc()
}

func (m *Metrics) IncrementTenantModified(status string) {
	m.TenantModified.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementAuthzDenied() {
	m.AuthzDenied.Inc()
}
