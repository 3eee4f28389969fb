package testutil

import (
	"testing"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns an isolated in-memory database with the full schema.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access connection pool: %v", err)
	}
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.BotConfig{},
		&models.StatusLog{},
		&models.ComponentLog{},
		&models.Incident{},
		&models.IncidentUpdate{},
		&models.Maintenance{},
		&models.MetricLog{},
		&models.UserReport{},
		&models.GuildConfig{},
		&models.UserConfig{},
		&models.SentAlert{},
		&models.CommandLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
