package models

type Tag struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null" json:"name"`
	// Color is a packed RGBA value, opaque to the backend.
	Color int64 `gorm:"not null" json:"color"`
}
