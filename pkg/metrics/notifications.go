package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics counts best-effort notification failures.
type NotificationMetrics struct {
	failures *prometheus.CounterVec
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Failed email or realtime notifications by kind.",
	}, []string{"kind"})
	reg.MustRegister(failures)
	return &NotificationMetrics{failures: failures}
}

func (m *NotificationMetrics) IncFailure(kind string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(kind)).Inc()
}
