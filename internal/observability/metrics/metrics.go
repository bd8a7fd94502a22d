package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the alert and reply flows.
type ConversationMetrics struct {
	alertsTotal   *prometheus.CounterVec
	repliesTotal  *prometheus.CounterVec
	bookingsTotal *prometheus.CounterVec
	replyLatency  *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetassist",
			Subsystem: "conversation",
			Name:      "alerts_total",
			Help:      "Total processed sensor anomaly alerts",
		}, []string{"outcome"}),
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetassist",
			Subsystem: "conversation",
			Name:      "inbound_reply_total",
			Help:      "Total interpreted inbound SMS replies",
		}, []string{"result"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetassist",
			Subsystem: "conversation",
			Name:      "booking_dispatch_total",
			Help:      "Total booking dispatch attempts",
		}, []string{"status"}),
		replyLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleetassist",
			Subsystem: "conversation",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound SMS webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.alertsTotal, m.repliesTotal, m.bookingsTotal, m.replyLatency)
	return m
}

func (m *ConversationMetrics) ObserveAlert(outcome string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObserveReply(result string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(result).Inc()
}

func (m *ConversationMetrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *ConversationMetrics) ObserveReplyLatency(result string, seconds float64) {
	if m == nil {
		return
	}
	m.replyLatency.WithLabelValues(result).Observe(seconds)
}
