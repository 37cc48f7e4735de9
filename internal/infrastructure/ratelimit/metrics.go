package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the limiter collectors. A nil *Metrics records nothing.
type Metrics struct {
	Checks        *prometheus.CounterVec
	ActiveKeys    *prometheus.GaugeVec
	PurgedKeys    *prometheus.CounterVec
	BackendErrors *prometheus.CounterVec
}

// NewMetricsWithRegistry registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tgnotify_ratelimit_checks_total",
			Help: "Rate limit checks by limiter and outcome.",
		}, []string{"limiter", "result"}),
		ActiveKeys: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tgnotify_ratelimit_active_keys",
			Help: "Keys currently tracked by an in-memory limiter.",
		}, []string{"limiter"}),
		PurgedKeys: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tgnotify_ratelimit_purged_keys_total",
			Help: "Idle keys removed by the periodic purge.",
		}, []string{"limiter"}),
		BackendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tgnotify_ratelimit_backend_errors_total",
			Help: "Shared-store failures that fell back to the in-memory limiter.",
		}, []string{"limiter"}),
	}
}

func (m *Metrics) observeCheck(limiter string, allowed bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if !allowed {
		result = "denied"
	}
	m.Checks.WithLabelValues(limiter, result).Inc()
}

func (m *Metrics) observePurge(limiter string, removed, activeKeys int) {
	if m == nil {
		return
	}
	m.PurgedKeys.WithLabelValues(limiter).Add(float64(removed))
	m.ActiveKeys.WithLabelValues(limiter).Set(float64(activeKeys))
}

func (m *Metrics) setActiveKeys(limiter string, activeKeys int) {
	if m == nil {
		return
	}
	m.ActiveKeys.WithLabelValues(limiter).Set(float64(activeKeys))
}

func (m *Metrics) observeBackendError(limiter string) {
	if m == nil {
		return
	}
	m.BackendErrors.WithLabelValues(limiter).Inc()
}
