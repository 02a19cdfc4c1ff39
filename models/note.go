package models

type Note struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     *string       `json:"title,omitempty"`
	Content   string        `gorm:"not null" json:"content"`
	FolderID  *int64        `json:"folder_id,omitempty"`
	CreatedAt LocalDateTime `gorm:"type:text;not null" json:"created_at"`
	UpdatedAt LocalDateTime `gorm:"type:text;not null" json:"updated_at"`
	IsPinned  bool          `gorm:"not null;default:false" json:"is_pinned"`
	Color     *int64        `json:"color,omitempty"`

	// Folder is a soft reference; a nil FolderID means uncategorized.
	Folder *Folder `gorm:"foreignKey:FolderID" json:"folder,omitempty"`
}
