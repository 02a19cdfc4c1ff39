package models

import "encoding/json"

// NotificationEvent is the payload a fired reminder pushes to clients. It is
// keyed by TodoID so a later notification for the same todo replaces the
// earlier one instead of stacking.
type NotificationEvent struct {
	TodoID    int64  `json:"todo_id"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

func (e *NotificationEvent) FromJSON(data []byte) error {
	return json.Unmarshal(data, e)
}

func (e *NotificationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
