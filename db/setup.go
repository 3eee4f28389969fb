package db

import (
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
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
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedDefaults inserts the required bot_config rows if they are absent.
// Existing values are never overwritten.
func SeedDefaults() error {
	defaults := map[string]string{
		"polling.status":                 "60",
		"polling.incident":               "60",
		"polling.maintenance":            "60",
		"polling.metrics":                "60",
		"report_threshold":               "3",
		"report_interval":                "60",
		"incident.resolve_confirmations": "1",
	}

	for key, value := range defaults {
		row := models.BotConfig{Key: key, Value: value, UpdatedAt: time.Now()}
		if err := DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}

// Close releases the underlying connection pool. Called after the scheduler
// has drained so no in-flight pass loses its store mid-write.
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
