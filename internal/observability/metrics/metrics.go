package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for the inbound webhook.
type WebhookMetrics struct {
	inboundTotal *prometheus.CounterVec
	latency      prometheus.Histogram
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviews",
			Subsystem: "webhook",
			Name:      "inbound_total",
			Help:      "Total inbound WhatsApp webhooks",
		}, []string{"status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reviews",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.latency)
	return m
}

func (m *WebhookMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *WebhookMetrics) ObserveLatency(seconds float64) {
	if m == nil {
		return
	}
	m.latency.Observe(seconds)
}

// ConversationMetrics exposes counters for the review dialogue.
type ConversationMetrics struct {
	transitionsTotal *prometheus.CounterVec
	completedTotal   prometheus.Counter
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reviews",
			Subsystem: "conversation",
			Name:      "transitions_total",
			Help:      "Total conversation state transitions",
		}, []string{"step"}),
		completedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reviews",
			Subsystem: "conversation",
			Name:      "completed_total",
			Help:      "Total completed reviews",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitionsTotal, m.completedTotal)
	return m
}

func (m *ConversationMetrics) ObserveTransition(step string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(step).Inc()
}

func (m *ConversationMetrics) ObserveCompleted() {
	if m == nil {
		return
	}
	m.completedTotal.Inc()
}
