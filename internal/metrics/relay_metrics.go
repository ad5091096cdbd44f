package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы обработки webhook-уведомления для метрик и логов.
const (
	NotificationOutcomeNotified     = "notified"
	NotificationOutcomeDuplicate    = "duplicate"
	NotificationOutcomeSkipped      = "skipped"
	NotificationOutcomeMissingID    = "missing_id"
	NotificationOutcomeLookupFailed = "lookup_failed"
	NotificationOutcomeStoreFailed  = "store_failed"
)

// RelayMetrics содержит метрики пайплайна платёжных уведомлений.
type RelayMetrics struct {
	preferencesCreated prometheus.Counter
	preferencesFailed  prometheus.Counter

	notifications   *prometheus.CounterVec
	webhookDuration prometheus.Histogram

	emails *prometheus.CounterVec
}

// NewRelayMetrics создаёт и регистрирует метрики в default registerer.
func NewRelayMetrics() *RelayMetrics {
	return newRelayMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newRelayMetricsWithRegisterer(registerer prometheus.Registerer) *RelayMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &RelayMetrics{
		preferencesCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "relay_preferences_created_total",
			Help: "Total number of checkout preferences created successfully",
		}),
		preferencesFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "relay_preferences_failed_total",
			Help: "Total number of checkout preference creations that failed",
		}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "relay_webhook_notifications_total",
			Help: "Total number of webhook notifications grouped by outcome",
		}, []string{"outcome"}),
		webhookDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "relay_webhook_duration_seconds",
			Help:    "Duration of webhook notification handling in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		emails: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "relay_emails_total",
			Help: "Total number of notification emails grouped by recipient kind and result",
		}, []string{"recipient", "result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordPreferenceCreated увеличивает счётчик успешно созданных preference.
func (m *RelayMetrics) RecordPreferenceCreated() {
	m.preferencesCreated.Inc()
}

// RecordPreferenceFailed увеличивает счётчик неудачных созданий preference.
func (m *RelayMetrics) RecordPreferenceFailed() {
	m.preferencesFailed.Inc()
}

// RecordNotification фиксирует исход обработки webhook-уведомления.
func (m *RelayMetrics) RecordNotification(outcome string) {
	m.notifications.WithLabelValues(outcome).Inc()
}

// RecordWebhookDuration записывает время обработки уведомления.
func (m *RelayMetrics) RecordWebhookDuration(duration time.Duration) {
	m.webhookDuration.Observe(duration.Seconds())
}

// RecordEmailSent фиксирует успешную отправку письма.
func (m *RelayMetrics) RecordEmailSent(recipient string) {
	m.emails.WithLabelValues(recipient, "sent").Inc()
}

// RecordEmailFailed фиксирует неудачную отправку письма.
func (m *RelayMetrics) RecordEmailFailed(recipient string) {
	m.emails.WithLabelValues(recipient, "failed").Inc()
}
