package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records session creation, webhook, and notification
// outcomes.
type CheckoutMetrics struct {
	sessionsCreated      *prometheus.CounterVec
	sessionsFailed       *prometheus.CounterVec
	webhookEvents        *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided
// registerer. A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_created_total",
		Help: "Checkout sessions successfully created, by environment.",
	}, []string{"environment"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_sessions_failed_total",
		Help: "Checkout session attempts that ended in an error, by error code.",
	}, []string{"code"})
	webhook := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripe_webhook_events_total",
		Help: "Stripe webhook deliveries, by event type.",
	}, []string{"event_type"})
	notify := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Notification channel failures, by channel.",
	}, []string{"channel"})
	reg.MustRegister(created, failed, webhook, notify)
	return &CheckoutMetrics{
		sessionsCreated:      created,
		sessionsFailed:       failed,
		webhookEvents:        webhook,
		notificationFailures: notify,
	}
}

func (c *CheckoutMetrics) IncSessionCreated(environment string) {
	if c == nil || c.sessionsCreated == nil {
		return
	}
	c.sessionsCreated.WithLabelValues(normalizeLabel(environment)).Inc()
}

func (c *CheckoutMetrics) IncSessionFailed(code string) {
	if c == nil || c.sessionsFailed == nil {
		return
	}
	c.sessionsFailed.WithLabelValues(normalizeLabel(code)).Inc()
}

func (c *CheckoutMetrics) IncWebhookEvent(eventType string) {
	if c == nil || c.webhookEvents == nil {
		return
	}
	c.webhookEvents.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (c *CheckoutMetrics) IncNotificationFailure(channel string) {
	if c == nil || c.notificationFailures == nil {
		return
	}
	c.notificationFailures.WithLabelValues(normalizeLabel(channel)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, ".", "_")
}
