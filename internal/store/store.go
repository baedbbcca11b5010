package store

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"alertrelay/internal/alert"
	"alertrelay/internal/logging"
	"alertrelay/internal/metrics"
)

// Record is the last-known state for one fingerprint.
type Record struct {
	LastSeen     UnixTime        `json:"last_seen"`
	FirstAlerted *UnixTime       `json:"first_alerted"`
	LastAlerted  UnixTime        `json:"last_alerted"`
	LastStatus   string          `json:"last_status"`
	Fingerprint  string          `json:"fingerprint"`
	Priority     *alert.Priority `json:"priority"`
	Name         *string         `json:"name"`
	Summary      *string         `json:"summary"`
}

type fileFormat struct {
	Data map[string]Record `json:"data"`
}

// Store maps fingerprint to Record and is the single source of truth for
// dedup decisions. The embedded mutex guards the whole store: callers must
// hold it across a full unit of work (a webhook batch plus its persist, a
// scheduler scan plus its persist) so no other task observes a half-applied
// batch.
type Store struct {
	sync.Mutex
	path string
	data map[string]Record
	now  func() time.Time
}

// Load reads the persisted store, falling back to an empty one when the
// file is missing or corrupt. Both cases are logged and non-fatal.
func Load(path string) *Store {
	s := &Store{
		path: path,
		data: make(map[string]Record),
		now:  time.Now,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logging.Warnf("Failed to load %s, starting with an empty store: %v", path, err)
		return s
	}
	var file fileFormat
	if err := json.Unmarshal(raw, &file); err != nil {
		logging.Errorf("Failed to parse JSON from %s, starting with an empty store: %v", path, err)
		return s
	}
	if file.Data != nil {
		s.data = file.Data
	}
	logging.Tracef("Loaded %d fingerprints from %s", len(s.data), path)
	return s
}

// Changed reports whether a notification is due: the fingerprint is new,
// or its status differs from the last committed one. Caller holds the lock.
func (s *Store) Changed(a *alert.Alert) bool {
	prev, ok := s.data[a.Fingerprint]
	if !ok {
		logging.Tracef("Have not seen %s before", a.Fingerprint)
		return true
	}
	logging.Tracef("Previous status for %s was %s, now %s", a.Fingerprint, prev.LastStatus, a.Status)
	return prev.LastStatus != a.Status
}

// RecordSeen refreshes a fingerprint whose status did not change. Display
// fields are rewritten from the event so they stay current; last_alerted is
// untouched and first_alerted clears when the alert is resolved. Caller
// holds the lock.
func (s *Store) RecordSeen(a *alert.Alert) {
	now := UnixTime{s.now()}

	lastAlerted := now
	if prev, ok := s.data[a.Fingerprint]; ok {
		lastAlerted = prev.LastAlerted
	}

	var firstAlerted *UnixTime
	if a.Status != "resolved" {
		if prev, ok := s.data[a.Fingerprint]; ok {
			firstAlerted = prev.FirstAlerted
		}
	}

	s.data[a.Fingerprint] = s.recordFromAlert(a, now, firstAlerted, lastAlerted)
}

// RecordAlerted commits a status change and the notification sent for it.
// first_alerted clears on resolved, starts now when previously unset, and
// is preserved otherwise. Caller holds the lock.
func (s *Store) RecordAlerted(a *alert.Alert) {
	now := UnixTime{s.now()}

	var firstAlerted *UnixTime
	if a.Status != "resolved" {
		if prev, ok := s.data[a.Fingerprint]; ok && prev.FirstAlerted != nil {
			firstAlerted = prev.FirstAlerted
		} else {
			firstAlerted = &now
		}
	}

	s.data[a.Fingerprint] = s.recordFromAlert(a, now, firstAlerted, now)
}

func (s *Store) recordFromAlert(a *alert.Alert, seen UnixTime, firstAlerted *UnixTime, lastAlerted UnixTime) Record {
	name := a.Labels.AlertName
	summary := a.Annotations.Summary
	priority := a.Priority()
	return Record{
		LastSeen:     seen,
		FirstAlerted: firstAlerted,
		LastAlerted:  lastAlerted,
		LastStatus:   a.Status,
		Fingerprint:  a.Fingerprint,
		Priority:     &priority,
		Name:         &name,
		Summary:      &summary,
	}
}

// RecordReminder marks that a reminder notification went out; every other
// field is preserved. Caller holds the lock.
func (s *Store) RecordReminder(fingerprint string) {
	prev, ok := s.data[fingerprint]
	if !ok {
		return
	}
	prev.LastAlerted = UnixTime{s.now()}
	s.data[fingerprint] = prev
}

// Persist writes the store to disk. Failures are logged and swallowed; the
// in-memory state stays authoritative until the next successful write.
// Caller holds the lock.
func (s *Store) Persist() {
	serialized, err := json.Marshal(fileFormat{Data: s.data})
	if err != nil {
		logging.Errorf("Failed to serialize fingerprints: %v", err)
		metrics.PersistFailures.Inc()
		return
	}
	if err := os.WriteFile(s.path, serialized, 0o644); err != nil {
		logging.Errorf("Failed to save fingerprints: %v", err)
		metrics.PersistFailures.Inc()
	}
}

// Snapshot returns a copy of every record, ordered by fingerprint for
// stable rendering. Caller holds the lock.
func (s *Store) Snapshot() []Record {
	records := make([]Record, 0, len(s.data))
	for _, record := range s.data {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Fingerprint < records[j].Fingerprint
	})
	return records
}
