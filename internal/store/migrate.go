package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"alertrelay/internal/logging"
)

// migrateLegacy converts the v1 flat fingerprint→status mapping into the
// current record schema. The migration time stands in for last_seen and
// last_alerted; everything else starts unset. Pure, so it is testable
// apart from the file I/O.
func migrateLegacy(legacy map[string]string, now time.Time) map[string]Record {
	migrated := make(map[string]Record, len(legacy))
	at := UnixTime{now}
	for fingerprint, status := range legacy {
		migrated[fingerprint] = Record{
			LastSeen:    at,
			LastAlerted: at,
			LastStatus:  status,
			Fingerprint: fingerprint,
		}
	}
	return migrated
}

// MigrateV1 rewrites a legacy state file in place, once, at startup. A
// missing file or one already in the current format simply returns an
// error for the caller to log; migration is best-effort and never fatal.
func MigrateV1(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var legacy map[string]string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return err
	}
	logging.Warnf("Migrating legacy fingerprints file %s before start", path)

	serialized, err := json.Marshal(fileFormat{Data: migrateLegacy(legacy, time.Now())})
	if err != nil {
		return fmt.Errorf("failed to serialize migrated fingerprints: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("failed to save migrated fingerprints: %w", err)
	}
	logging.Debugf("Fingerprint migration successful")
	return nil
}
