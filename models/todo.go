package models

// Priority orders todos within a day: HIGH sorts before MEDIUM before LOW
// when the calendar view sorts "priority DESC" on the stored integer.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

type Todo struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Note           *string        `json:"note,omitempty"`
	IsCompleted    bool           `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt      LocalDateTime  `gorm:"type:text;not null" json:"created_at"`
	TagID          *int64         `json:"tag_id,omitempty"`
	Priority       Priority       `gorm:"not null;default:0" json:"priority"`
	DueDate        *LocalDateTime `gorm:"type:text" json:"due_date,omitempty"`
	EnableReminder bool           `gorm:"not null;default:false" json:"enable_reminder"`

	// Tag is a soft reference resolved at read time; deleting the tag nulls
	// TagID on referencing todos, it never cascades to the todo itself.
	Tag *Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}
