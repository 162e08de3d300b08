package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "tenantry/pkg/domain-errors"
)

// Operation labels for UserMutations.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

type Metrics struct {
	UserMutations *prometheus.CounterVec
	FieldErrors   *prometheus.CounterVec
	AuthzDenied   prometheus.Counter
	ListResults   prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UserMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_user_mutations_total",
			Help: "Total number of committed user mutations, labeled by operation",
		}, []string{"operation"}),
		FieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_user_field_errors_total",
			Help: "Total number of user field errors, labeled by rule",
		}, []string{"rule"}),
		AuthzDenied: factory.NewCounter(prometheus.CounterOpts{
			Name: "tenantry_user_authorization_denied_total",
			Help: "Total number of user operations rejected for non-agent callers",
		}),
		ListResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tenantry_user_list_results",
			Help:    "Number of users returned per listing",
			Buckets: []float64{0, 1, 10, 25, 50, 100, 200},
		}),
	}
}

func (m *Metrics) IncrementMutation(operation string) {
	m.UserMutations.WithLabelValues(operation).Inc()
}

// ObserveFieldErrors counts each error by rule. Rules form a small closed set,
// so the label stays low-cardinality.
func (m *Metrics) ObserveFieldErrors(fields []dErrors.FieldError) {
	for _, fe := range fields {
		m.FieldErrors.WithLabelValues(fe.Rule).Inc()
	}
}

func (m *Metrics) IncrementAuthzDenied() {
	m.AuthzDenied.Inc()
}

func (m *Metrics) ObserveListResults(n int) {
	m.ListResults.Observe(float64(n))
}
