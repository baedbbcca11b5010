package store

import (
	"fmt"
	"strconv"
	"time"
)

// UnixTime persists as whole epoch seconds, the state file's timestamp
// format.
type UnixTime struct {
	time.Time
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	secs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp is not epoch seconds: %w", err)
	}
	t.Time = time.Unix(secs, 0).UTC()
	return nil
}

func (t UnixTime) Equal(other UnixTime) bool {
	return t.Unix() == other.Unix()
}
