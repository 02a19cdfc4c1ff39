package testutils

import (
	"fmt"

	"github.com/google/uuid"

	"daymark-app/daymark/database"
)

// OpenTestDB opens a fresh in-memory SQLite database with the full schema
// applied. Each call gets its own database, so tests never see each other's
// rows.
func OpenTestDB() (*database.Database, func()) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(dsn)
	if err != nil {
		panic(err)
	}

	return db, func() {
		db.Close()
	}
}
