package realert

import (
	"time"

	"github.com/robfig/cron/v3"

	"alertrelay/internal/logging"
	"alertrelay/internal/metrics"
	"alertrelay/internal/notify"
	"alertrelay/internal/store"
)

// wakeInterval bounds scan granularity for the interval loop and guards
// the cron loop against re-firing within its matching minute.
const wakeInterval = 60 * time.Second

// Scheduler owns the scan-and-remind logic shared by the interval and cron
// loops: find unresolved fingerprints, enqueue a reminder for each, mark
// them re-alerted, persist once.
type Scheduler struct {
	store       *store.Store
	queue       *notify.Queue
	recipients  []string
	application string
	now         func() time.Time
	sleep       func(time.Duration)
}

func NewScheduler(st *store.Store, queue *notify.Queue, recipients []string, application string) *Scheduler {
	return &Scheduler{
		store:       st,
		queue:       queue,
		recipients:  recipients,
		application: application,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// RunInterval re-alerts every fingerprint that has stayed unresolved for
// longer than the configured number of minutes. The loop wakes every 60s
// regardless of the threshold, so delivery can lag it by up to a minute.
// Blocks; meant to run in its own goroutine.
func (s *Scheduler) RunInterval(everyMinutes *int64) {
	if everyMinutes == nil {
		logging.Tracef("Interval re-alert not configured, exiting loop")
		return
	}
	ttl := time.Duration(*everyMinutes) * time.Minute
	logging.Infof("Re-alerting unresolved alerts every %s", ttl)
	for {
		cutoff := s.now().Add(-ttl)
		s.scan(&cutoff, "interval")
		s.sleep(wakeInterval)
	}
}

// RunCron re-alerts every unresolved fingerprint, regardless of age, each
// time the cron expression matches. Blocks; meant to run in its own
// goroutine.
func (s *Scheduler) RunCron(expression *string) {
	if expression == nil {
		logging.Tracef("Cron re-alert not configured, exiting loop")
		return
	}
	schedule, err := cron.ParseStandard(*expression)
	if err != nil {
		logging.Errorf("Cron expression %q could not be parsed, disabling cron re-alerts: %v", *expression, err)
		return
	}
	logging.Infof("Re-alerting unresolved alerts on cron schedule %q", *expression)
	for {
		now := s.now()
		next := schedule.Next(now)
		logging.Tracef("%s until next cron re-alert", next.Sub(now))
		s.sleep(next.Sub(now))
		s.scan(nil, "cron")
		s.sleep(wakeInterval)
	}
}

// scan runs one reminder pass. A nil cutoff reminds every unresolved
// record; otherwise only those last alerted at or before the cutoff. The
// store lock is held for the whole pass, persist included, so ingestion
// never observes a half-finished scan.
func (s *Scheduler) scan(cutoff *time.Time, scheduler string) int {
	s.store.Lock()
	defer s.store.Unlock()

	reminded := 0
	for _, record := range s.store.Snapshot() {
		if record.LastStatus == "resolved" {
			continue
		}
		if cutoff != nil && record.LastAlerted.After(*cutoff) {
			continue
		}

		notification, err := notify.Reminder(record, s.recipients, s.application)
		if err != nil {
			logging.Errorf("Failed to build re-alert notification for %s: %v", record.Fingerprint, err)
			continue
		}
		if err := s.queue.Enqueue(notification); err != nil {
			logging.Errorf("Failed to queue re-alert notification for %s: %v", record.Fingerprint, err)
			continue
		}
		logging.Tracef("Queued reminder for %s", record.Fingerprint)
		metrics.Reminders.WithLabelValues(scheduler).Inc()
		s.store.RecordReminder(record.Fingerprint)
		reminded++
	}
	if reminded > 0 {
		logging.Debugf("Re-alerted %d unresolved fingerprints", reminded)
	}
	s.store.Persist()
	return reminded
}
