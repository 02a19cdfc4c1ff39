package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// migration is one additive schema step. Steps only ever add tables or
// nullable/defaulted columns, never remove or rename, so any database at
// version N upgrades cleanly to N+1.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "todos and tags",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS todos (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				is_completed INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				tag_id INTEGER
			)`,
			`CREATE TABLE IF NOT EXISTS tags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				color INTEGER NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "notes and folders",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS notes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT,
				content TEXT NOT NULL,
				folder_id INTEGER,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				is_pinned INTEGER NOT NULL DEFAULT 0,
				color INTEGER
			)`,
			`CREATE TABLE IF NOT EXISTS folders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				created_at TEXT NOT NULL,
				is_system INTEGER NOT NULL DEFAULT 0
			)`,
		},
	},
	{
		version: 3,
		name:    "todo priority",
		stmts: []string{
			`ALTER TABLE todos ADD COLUMN priority INTEGER NOT NULL DEFAULT 0`,
		},
	},
	{
		version: 4,
		name:    "due dates and reminders",
		stmts: []string{
			`ALTER TABLE todos ADD COLUMN due_date TEXT`,
			`ALTER TABLE todos ADD COLUMN enable_reminder INTEGER NOT NULL DEFAULT 0`,
		},
	},
	{
		version: 5,
		name:    "todo notes",
		stmts: []string{
			`ALTER TABLE todos ADD COLUMN note TEXT`,
		},
	},
	{
		version: 6,
		name:    "query indexes",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_todos_is_completed ON todos(is_completed)`,
			`CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos(due_date)`,
			`CREATE INDEX IF NOT EXISTS idx_notes_folder_id ON notes(folder_id)`,
		},
	},
}

// RunMigrations applies every migration newer than the stored schema version,
// in order, each inside its own transaction.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL,
		applied_at TEXT NOT NULL
	)`).Error; err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var currentVersion int
	if err := db.Raw("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion).Error; err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, stmt := range m.stmts {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return tx.Exec(
				"INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))",
				m.version,
			).Error
		})
		if err != nil {
			return fmt.Errorf("applying migration %d (%s): %w", m.version, m.name, err)
		}

		zap.L().Info("applied schema migration",
			zap.Int("version", m.version),
			zap.String("name", m.name))
	}

	return nil
}

// SchemaVersion reports the highest applied migration version.
func SchemaVersion(db *gorm.DB) (int, error) {
	var version int
	err := db.Raw("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version).Error
	return version, err
}
