// Package testutil provides shared test utilities for integration tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KarimImran/quadcast2-go/internal/database/models"
	"github.com/KarimImran/quadcast2-go/internal/database/repositories"
)

// TestDB holds the test database and repositories.
type TestDB struct {
	DB         *gorm.DB
	PresetRepo *repositories.PresetRepository
}

// SetupTestDB creates an in-memory SQLite database for testing.
// It returns a TestDB with the repositories initialized and a cleanup function.
func SetupTestDB(t *testing.T) (*TestDB, func()) {
	t.Helper()

	// Create in-memory SQLite database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Auto-migrate all models
	err = db.AutoMigrate(
		&models.Preset{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	testDB := &TestDB{
		DB:         db,
		PresetRepo: repositories.NewPresetRepository(db),
	}

	// Cleanup function - close the database connection
	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	return testDB, cleanup
}

// UniquePresetName generates a unique preset name for testing.
// This ensures tests don't conflict with each other.
func UniquePresetName(prefix string) string {
	return prefix + "-" + cuid.New()[:8]
}
