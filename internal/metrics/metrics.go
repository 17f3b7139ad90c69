package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-security-alert-watcher/internal/models"
)

const namespace = "alert_watcher"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	deliveries     *prometheus.CounterVec
	decisions      *prometheus.CounterVec
	memberships    *prometheus.CounterVec
	reopenFailures *prometheus.CounterVec
}

// New registers the collectors with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Webhook deliveries by response status.",
		}, []string{"status"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Approval decisions by alert type.",
		}, []string{"alert_type", "decision"}),
		memberships: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "membership_checks_total",
			Help:      "Approver team membership checks by outcome.",
		}, []string{"outcome"}),
		reopenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reopen_failures_total",
			Help:      "Failed attempts to reopen an alert.",
		}, []string{"alert_type"}),
	}
	reg.MustRegister(m.deliveries, m.decisions, m.memberships, m.reopenFailures)
	return m
}

func (m *Metrics) DeliveryHandled(status int) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(strconv.Itoa(status)).Inc()
}

func (m *Metrics) DecisionMade(t models.AlertType, d models.Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(string(t), d.String()).Inc()
}

func (m *Metrics) MembershipChecked(outcome models.MembershipOutcome) {
	if m == nil {
		return
	}
	m.memberships.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) ReopenFailed(t models.AlertType) {
	if m == nil {
		return
	}
	m.reopenFailures.WithLabelValues(string(t)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
