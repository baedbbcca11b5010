package notify

import (
	"time"

	"alertrelay/internal/logging"
	"alertrelay/internal/metrics"
)

// Submitter delivers one notification downstream. Failures are assumed
// transient and retryable; duplicate submission on retry is acceptable.
type Submitter interface {
	Submit(n Notification) error
}

// Worker drains the queue in order. A failed delivery is retried forever
// at the linear retry delay before anything behind it is attempted:
// ordering and no-loss are bought at the price of head-of-line blocking on
// a persistently failing recipient. That trade-off is deliberate.
type Worker struct {
	queue      *Queue
	submitter  Submitter
	sendDelay  time.Duration
	retryDelay time.Duration
	sleep      func(time.Duration)
}

func NewWorker(queue *Queue, submitter Submitter, sendDelay, retryDelay time.Duration) *Worker {
	return &Worker{
		queue:      queue,
		submitter:  submitter,
		sendDelay:  sendDelay,
		retryDelay: retryDelay,
		sleep:      time.Sleep,
	}
}

// Run blocks until the queue is closed and drained.
func (w *Worker) Run() {
	logging.Debugf("Notification queue worker started")
	for {
		notification, ok := w.queue.Dequeue()
		if !ok {
			logging.Warnf("Notification queue has been closed")
			return
		}
		for {
			logging.Tracef("Processing notification %q", notification.Title)
			err := w.submitter.Submit(notification)
			if err == nil {
				metrics.NotificationsSent.Inc()
				w.sleep(w.sendDelay)
				break
			}
			logging.Errorf("Failed to send notification: %v", err)
			logging.Debugf("Waiting %s to retry sending notifications", w.retryDelay)
			metrics.NotificationRetries.Inc()
			w.sleep(w.retryDelay)
		}
	}
}
