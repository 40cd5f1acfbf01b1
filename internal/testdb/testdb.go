// Package testdb provides an in-memory SQLite database for tests that need
// real queries against the review schema.
package testdb

import (
	"fmt"
	"strings"
	"testing"

	"github.com/huangang/feedbacklens/internal/config"
	"github.com/huangang/feedbacklens/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a private in-memory database with all migrations applied.
// The database is closed when the test finishes.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := models.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, logger.Silent)
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("testdb.New: sql handle: %v", err)
	}
	// One connection keeps the shared in-memory database alive and
	// serialises writers.
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		_ = sqlDB.Close()
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
