package alert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message is the webhook payload sent by Grafana / Alertmanager.
type Message struct {
	Alerts []Alert `json:"alerts"`
}

type Alert struct {
	Status       string      `json:"status"`
	Labels       Labels      `json:"labels"`
	Annotations  Annotations `json:"annotations"`
	GeneratorURL string      `json:"generatorURL"`
	Fingerprint  string      `json:"fingerprint"`
}

type Labels struct {
	AlertName string `json:"alertname"`
}

type Annotations struct {
	Summary string `json:"summary"`
}

// ParseMessage decodes a webhook body. Malformed JSON or an alert missing
// its status, fingerprint, or alertname rejects the whole payload; no
// partial alert list is ever returned.
func ParseMessage(body []byte) (*Message, error) {
	message := &Message{}
	if err := json.Unmarshal(body, message); err != nil {
		return nil, err
	}
	for i, a := range message.Alerts {
		if a.Status == "" {
			return nil, fmt.Errorf("alert %d: missing status", i)
		}
		if a.Fingerprint == "" {
			return nil, fmt.Errorf("alert %d: missing fingerprint", i)
		}
		if a.Labels.AlertName == "" {
			return nil, fmt.Errorf("alert %d: missing labels.alertname", i)
		}
	}
	return message, nil
}

// Priority classifies an alert by status and severity prefix on the alert
// name. Anything not firing, including resolved, is VeryLow regardless of
// prefix.
func (a *Alert) Priority() Priority {
	if a.Status != "firing" {
		return VeryLow
	}
	name := a.Labels.AlertName
	switch {
	case strings.HasPrefix(name, "[critical]") || strings.HasPrefix(name, "[CRIT]"):
		return Emergency
	case strings.HasPrefix(name, "[high]") || strings.HasPrefix(name, "[HIGH]"):
		return High
	default:
		return Normal
	}
}
