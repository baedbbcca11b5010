package notify

import (
	"fmt"
	"time"

	"github.com/gregdel/pushover"

	"alertrelay/internal/alert"
	"alertrelay/internal/logging"
)

// PushoverSubmitter delivers notifications through the Pushover API, one
// message per recipient key.
type PushoverSubmitter struct {
	app *pushover.Pushover
}

func NewPushoverSubmitter(token string) *PushoverSubmitter {
	return &PushoverSubmitter{app: pushover.New(token)}
}

func (p *PushoverSubmitter) Submit(n Notification) error {
	message := &pushover.Message{
		Message:  n.Description,
		Title:    n.Title,
		Priority: pushoverPriority(n.Priority),
		URL:      n.URL,
		URLTitle: n.Application,
	}
	if message.Priority == pushover.PriorityEmergency {
		// Emergency messages must carry retry/expire per the Pushover API.
		message.Retry = 60 * time.Second
		message.Expire = time.Hour
	}
	for _, key := range n.Recipients {
		if _, err := p.app.SendMessage(message, pushover.NewRecipient(key)); err != nil {
			return fmt.Errorf("pushover submission failed: %w", err)
		}
	}
	return nil
}

func pushoverPriority(p alert.Priority) int {
	switch p {
	case alert.Emergency:
		return pushover.PriorityEmergency
	case alert.High:
		return pushover.PriorityHigh
	case alert.Low:
		return pushover.PriorityLow
	case alert.VeryLow:
		return pushover.PriorityLowest
	default:
		return pushover.PriorityNormal
	}
}

// DryRunSubmitter logs instead of sending; wired when test_mode is set.
type DryRunSubmitter struct{}

func (DryRunSubmitter) Submit(n Notification) error {
	logging.Infof("Dry run, not sending notification %q (%s)", n.Title, n.Priority)
	return nil
}
