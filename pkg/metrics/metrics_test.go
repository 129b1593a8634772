package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestReconcileMetricsCountsByChannelAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReconcileMetrics(reg)

	m.Observe("webhook", OutcomeCreated)
	m.Observe("webhook", OutcomeCreated)
	m.Observe("confirm", OutcomeDuplicate)
	m.Observe("", OutcomeFailed)
	m.IncShippingDrift()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("webhook", OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("confirm", OutcomeDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("unknown", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.drift))
}

func TestNilRegistererYieldsNoopMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		NewReconcileMetrics(nil).Observe("verify", OutcomeCreated)
		NewNotificationMetrics(nil).IncFailure("email")
		NewWebhookMetrics(nil).Observe("checkout.session.completed", "ok")
		NewOutboxMetrics(nil).Observe("published")

		var m *ReconcileMetrics
		m.IncShippingDrift()
	})
}

func TestNotificationAndOutboxCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	n := NewNotificationMetrics(reg)
	o := NewOutboxMetrics(reg)
	w := NewWebhookMetrics(reg)

	n.IncFailure("customer_email")
	o.Observe("published")
	o.Observe("published")
	w.Observe("checkout.session.completed", "reconciled")

	assert.Equal(t, 1.0, testutil.ToFloat64(n.failures.WithLabelValues("customer_email")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.outcomes.WithLabelValues("published")))
	assert.Equal(t, 1, testutil.CollectAndCount(w.events))
}

func TestReconcileMetricsGatherExposesLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewReconcileMetrics(reg).Observe("verify", OutcomeRecovered)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, ok := findCounter(mfs, "reconcile_outcomes_total", map[string]string{"channel": "verify", "outcome": OutcomeRecovered})
	if !ok {
		t.Fatalf("reconcile_outcomes_total{channel=verify,outcome=recovered} not exported")
	}
	if got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
}

func findCounter(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, bool) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			matched := 0
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue(), true
			}
		}
	}
	return 0, false
}
