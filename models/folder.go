package models

// Virtual folder ids. Neither is ever persisted: the folders table uses
// AUTOINCREMENT so generated ids start at 1 and can never collide with them.
const (
	AllFolderID           int64 = 0
	UncategorizedFolderID int64 = -1
)

type Folder struct {
	ID        int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string        `gorm:"not null" json:"name"`
	CreatedAt LocalDateTime `gorm:"type:text;not null" json:"created_at"`
	IsSystem  bool          `gorm:"not null;default:false" json:"is_system"`
}

func (f Folder) IsVirtual() bool {
	return f.ID == AllFolderID || f.ID == UncategorizedFolderID
}

// SystemFolders returns the two synthesized folders that head every folder
// list, in their fixed order.
func SystemFolders() []Folder {
	return []Folder{
		{ID: AllFolderID, Name: "All", IsSystem: true},
		{ID: UncategorizedFolderID, Name: "Uncategorized", IsSystem: true},
	}
}
