package skill

import (
	"bitbucket.org/sotavant/caster-skill/internal/notifier"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dispatched events and notification outcomes. A nil
// *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	fallbacks     prometheus.Counter
	notifications *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caster_requests_total",
				Help: "Dispatched skill events by request type and intent",
			},
			[]string{"type", "intent"},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "caster_fallbacks_total",
				Help: "Intent requests that had no matching handler",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caster_notifications_total",
				Help: "Finished trigger notifications by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.requests, m.fallbacks, m.notifications)

	return m
}

// ObserveNotification is meant to be passed to notifier.WithOutcomeHook.
func (m *Metrics) ObserveNotification(o notifier.Outcome) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(o)).Inc()
}

// unknownIntent labels intent requests without a handler, so caller supplied
// names never become label values.
const unknownIntent = "unknown"

func (m *Metrics) observeRequest(t RequestType, intent string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(t), intent).Inc()
}

func (m *Metrics) observeFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
