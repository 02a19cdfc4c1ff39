package services

import (
	"time"

	"daymark-app/daymark/broker"
)

type NotificationServiceInterface interface {
	Notify(todoID int64, title string) error
}

// NotificationService turns a fired reminder into a notification event on the
// broker, keyed by todo id so consumers replace rather than stack.
type NotificationService struct{}

func (s *NotificationService) Notify(todoID int64, title string) error {
	if title == "" {
		// Permanent failure for this occurrence; the scheduler does not retry.
		return ErrReminderTitleMissing
	}

	broker.Publish(broker.NotificationTopic, broker.NewEvent(
		broker.ReminderFired, "reminder", todoID, map[string]interface{}{
			"title":     title,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}))

	return nil
}

var NotificationServiceInstance NotificationServiceInterface = &NotificationService{}
