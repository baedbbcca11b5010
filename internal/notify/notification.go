package notify

import (
	"fmt"

	"alertrelay/internal/alert"
	"alertrelay/internal/store"
)

// Pushover's documented field limits; construction fails rather than
// letting the API reject the message after queueing.
const (
	maxTitleLen       = 250
	maxDescriptionLen = 1024
	maxURLLen         = 512
)

// Notification is one outbound push message, validated at construction so
// a bad one never enters the delivery queue.
type Notification struct {
	Recipients  []string
	Priority    alert.Priority
	URL         string
	Application string
	Title       string
	Description string
}

func New(recipients []string, priority alert.Priority, url, application, title, description string) (Notification, error) {
	if len(recipients) == 0 {
		return Notification{}, fmt.Errorf("notification needs at least one recipient")
	}
	if title == "" {
		return Notification{}, fmt.Errorf("notification title is empty")
	}
	if len(title) > maxTitleLen {
		return Notification{}, fmt.Errorf("notification title exceeds %d bytes", maxTitleLen)
	}
	if description == "" {
		return Notification{}, fmt.Errorf("notification description is empty")
	}
	if len(description) > maxDescriptionLen {
		return Notification{}, fmt.Errorf("notification description exceeds %d bytes", maxDescriptionLen)
	}
	if len(url) > maxURLLen {
		return Notification{}, fmt.Errorf("notification url exceeds %d bytes", maxURLLen)
	}
	return Notification{
		Recipients:  recipients,
		Priority:    priority,
		URL:         url,
		Application: application,
		Title:       title,
		Description: description,
	}, nil
}

// FromAlert builds the initial status-change notification for an alert.
func FromAlert(a *alert.Alert, recipients []string, application string) (Notification, error) {
	status := a.Status
	switch status {
	case "firing":
		status = "🔥"
	case "resolved":
		status = "✅"
	}
	title := fmt.Sprintf("[%s] %s", status, a.Labels.AlertName)
	description := fmt.Sprintf("%s: %s", a.Status, a.Annotations.Summary)
	return New(recipients, a.Priority(), a.GeneratorURL, application, title, description)
}

// Reminder builds the re-alert notification for a still-unresolved record.
// The clock marker keeps reminders distinguishable from initial alerts.
func Reminder(record store.Record, recipients []string, application string) (Notification, error) {
	name := "Unknown"
	if record.Name != nil {
		name = *record.Name
	}
	priority := alert.Normal
	if record.Priority != nil {
		priority = *record.Priority
	}
	title := fmt.Sprintf("[🕓] %s", name)
	description := fmt.Sprintf("%s is still firing.", name)
	return New(recipients, priority, "", application, title, description)
}
