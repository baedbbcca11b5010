package alert

import (
	"encoding/json"
	"fmt"
)

// Priority mirrors the downstream push provider's scale.
type Priority int

const (
	VeryLow   Priority = -2
	Low       Priority = -1
	Normal    Priority = 0
	High      Priority = 1
	Emergency Priority = 2
)

var priorityNames = map[Priority]string{
	VeryLow:   "VeryLow",
	Low:       "Low",
	Normal:    "Normal",
	High:      "High",
	Emergency: "Emergency",
}

var priorityValues = map[string]Priority{
	"VeryLow":   VeryLow,
	"Low":       Low,
	"Normal":    Normal,
	"High":      High,
	"Emergency": Emergency,
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// Priorities persist by name in the fingerprint state file.
func (p Priority) MarshalJSON() ([]byte, error) {
	name, ok := priorityNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown priority %d", int(p))
	}
	return json.Marshal(name)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	value, ok := priorityValues[name]
	if !ok {
		return fmt.Errorf("unknown priority %q", name)
	}
	*p = value
	return nil
}
