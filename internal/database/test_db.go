package database

import (
	"regexp"
	"testing"

	"coreauth/internal/config"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// OpenTest opens a private in-memory SQLite database for one test and closes it
// when the test ends.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()

	name := unsafeName.ReplaceAllString(t.Name(), "_") + "_" + uuid.NewString()[:8]
	db, err := Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + name + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = Close(db)
	})
	return db
}
