package broker

import "time"

type EventType string

// Standardized event types in format: <resource>.<action>
const (
	TodoCreated EventType = "todo.created"
	TodoUpdated EventType = "todo.updated"
	TodoDeleted EventType = "todo.deleted"

	TagCreated EventType = "tag.created"
	TagUpdated EventType = "tag.updated"
	TagDeleted EventType = "tag.deleted"

	NoteCreated EventType = "note.created"
	NoteUpdated EventType = "note.updated"
	NoteDeleted EventType = "note.deleted"
	NotesMoved  EventType = "note.moved"

	FolderCreated EventType = "folder.created"
	FolderDeleted EventType = "folder.deleted"

	ReminderFired EventType = "reminder.fired"
)

// Event is a change notification, not a persisted record. Repositories
// publish one after every successful mutation; view-state containers use them
// as their reload signal.
type Event struct {
	Type      EventType              `json:"type"`
	Entity    string                 `json:"entity"`
	EntityID  int64                  `json:"entity_id"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewEvent(eventType EventType, entity string, entityID int64, payload map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		Entity:    entity,
		EntityID:  entityID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
