package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alertrelay/internal/logging"
)

var (
	WebhooksReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertrelay_webhooks_received_total",
		Help: "Webhook requests accepted by the ingestion path",
	})
	AlertsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertrelay_alerts_processed_total",
		Help: "Alerts processed per dedup outcome",
	}, []string{"outcome"}) // changed | unchanged
	NotificationsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertrelay_notifications_enqueued_total",
		Help: "Notifications placed on the delivery queue",
	})
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertrelay_notifications_sent_total",
		Help: "Notifications successfully submitted downstream",
	})
	NotificationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertrelay_notification_retries_total",
		Help: "Failed delivery attempts that will be retried",
	})
	Reminders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertrelay_reminders_total",
		Help: "Re-alert reminders enqueued per scheduler",
	}, []string{"scheduler"}) // interval | cron
	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alertrelay_persist_failures_total",
		Help: "Failed writes of the fingerprint state file",
	})
)

// Serve exposes /metrics on its own listener, separate from the alert
// ingestion socket. Blocks; meant to run in its own goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logging.Infof("Serving metrics on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		logging.Errorf("Metrics server stopped: %v", err)
	}
}
