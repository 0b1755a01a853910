// Package metrics exposes Prometheus instruments for the entitlement engine.
// Everything is served from the /metrics endpoint on the API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	quotaChecks    *prometheus.CounterVec
	quotaMutations *prometheus.CounterVec
	planChanges    *prometheus.CounterVec
	resetSweeps    prometheus.Counter
	resetErrors    prometheus.Counter
	rateLimited    *prometheus.CounterVec
}

func New() *Metrics {
	return newWithRegisterer(prometheus.DefaultRegisterer)
}

func newWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		quotaChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paperflow_quota_checks_total",
			Help: "Quota limit checks by resource and outcome.",
		}, []string{"resource", "exceeded"}),
		quotaMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paperflow_quota_mutations_total",
			Help: "Quota counter mutations by resource and operation.",
		}, []string{"resource", "op"}),
		planChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paperflow_plan_changes_total",
			Help: "Plan changes by target plan.",
		}, []string{"plan_id"}),
		resetSweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperflow_quota_reset_sweeps_total",
			Help: "Completed periodic counter reset sweeps.",
		}),
		resetErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "paperflow_quota_reset_errors_total",
			Help: "Tenants that failed during a reset sweep.",
		}),
		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "paperflow_rate_limited_total",
			Help: "Requests rejected by the per-tenant rate limiter.",
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) RecordQuotaCheck(resource string, exceeded bool) {
	if m == nil {
		return
	}
	outcome := "false"
	if exceeded {
		outcome = "true"
	}
	m.quotaChecks.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) RecordQuotaMutation(resource, op string) {
	if m == nil {
		return
	}
	m.quotaMutations.WithLabelValues(resource, op).Inc()
}

func (m *Metrics) RecordPlanChange(planID string) {
	if m == nil {
		return
	}
	m.planChanges.WithLabelValues(planID).Inc()
}

func (m *Metrics) RecordResetSweep() {
	if m == nil {
		return
	}
	m.resetSweeps.Inc()
}

func (m *Metrics) RecordResetError() {
	if m == nil {
		return
	}
	m.resetErrors.Inc()
}

func (m *Metrics) RecordRateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(endpoint).Inc()
}
