package server

import (
	"fmt"

	"alertrelay/internal/alert"
	"alertrelay/internal/httpx"
	"alertrelay/internal/logging"
	"alertrelay/internal/metrics"
	"alertrelay/internal/notify"
)

// handleWebhook runs the dedup pipeline for one webhook batch. The store
// lock is held across the whole batch and its persist so scheduler scans
// never interleave with a half-applied batch. Per-alert failures do not
// stop the batch; only the last one is reported (the historical batch
// error contract), and mutations already applied are kept either way.
func (s *Server) handleWebhook(request *httpx.Request) httpx.Response {
	logging.Tracef("Processing webhook request")

	if request.Method != "POST" {
		return webhookFailure(fmt.Errorf("expected method POST, got %s", request.Method))
	}

	message, err := alert.ParseMessage([]byte(request.Body))
	if err != nil {
		return webhookFailure(fmt.Errorf("webhook JSON could not be parsed: %w", err))
	}
	metrics.WebhooksReceived.Inc()

	var lastErr error
	s.store.Lock()
	defer s.store.Unlock()
	for i := range message.Alerts {
		event := &message.Alerts[i]
		// A provider may repeat a notification for an unchanged status,
		// including resolved ones.
		if !s.store.Changed(event) {
			s.store.RecordSeen(event)
			metrics.AlertsProcessed.WithLabelValues("unchanged").Inc()
			continue
		}
		s.store.RecordAlerted(event)
		metrics.AlertsProcessed.WithLabelValues("changed").Inc()
		if err := s.enqueueNotification(event); err != nil {
			logging.Errorf("Error queueing notification: %v", err)
			lastErr = err
		}
	}
	s.store.Persist()

	if lastErr != nil {
		return webhookFailure(lastErr)
	}
	return httpx.NewResponse("HTTP/1.1 200 OK", []string{"Content-Type: text/plain"}, "Accepted")
}

func (s *Server) enqueueNotification(event *alert.Alert) error {
	notification, err := notify.FromAlert(event, s.config.PushoverUserKeys, s.config.AppName)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	if err := s.queue.Enqueue(notification); err != nil {
		return fmt.Errorf("failed to queue notification: %w", err)
	}
	logging.Debugf("Queued notification for %q", notification.Title)
	return nil
}
