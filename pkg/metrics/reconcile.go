package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reconciliation outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
	OutcomeRecovered = "recovered"
	OutcomeEmptyCart = "empty_cart"
	OutcomeUnpaid    = "unpaid"
	OutcomeFailed    = "failed"
)

// ReconcileMetrics tracks how payment completions were turned into orders.
type ReconcileMetrics struct {
	outcomes *prometheus.CounterVec
	drift    prometheus.Counter
}

func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_outcomes_total",
		Help: "Payment reconciliation attempts by trigger channel and outcome.",
	}, []string{"channel", "outcome"})
	drift := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_shipping_drift_total",
		Help: "Orders whose checkout shipping differs from the current shipping rules.",
	})
	reg.MustRegister(outcomes, drift)
	return &ReconcileMetrics{outcomes: outcomes, drift: drift}
}

func (m *ReconcileMetrics) Observe(channel, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

func (m *ReconcileMetrics) IncShippingDrift() {
	if m == nil || m.drift == nil {
		return
	}
	m.drift.Inc()
}
