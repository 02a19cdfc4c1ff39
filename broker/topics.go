package broker

const (
	TodoEventsTopic   = "todo_events"
	TagEventsTopic    = "tag_events"
	NoteEventsTopic   = "note_events"
	FolderEventsTopic = "folder_events"
	NotificationTopic = "notification_events"
)

// EntityTopics lists every change-event topic, in no particular order.
var EntityTopics = []string{
	TodoEventsTopic,
	TagEventsTopic,
	NoteEventsTopic,
	FolderEventsTopic,
}
