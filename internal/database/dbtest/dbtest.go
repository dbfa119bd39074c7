// Package dbtest provides a throwaway database for tests.
package dbtest

import (
	"testing"

	"gamecatalog/backend/internal/database"

	"gorm.io/gorm"
)

// Open returns a migrated in-memory sqlite database and installs it as database.DB
// for the duration of the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is its own database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})
	return db
}
