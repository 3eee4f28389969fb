package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// Polling interval bounds, in seconds.
	MinIntervalSeconds     = 60
	MaxIntervalSeconds     = 3600
	DefaultIntervalSeconds = 60

	KeyReportThreshold      = "report_threshold"
	KeyReportInterval       = "report_interval"
	KeyResolveConfirmations = "incident.resolve_confirmations"

	// Fallbacks used when a bot_config key is absent.
	DefaultReportThreshold      = 3
	DefaultReportInterval       = 60 // minutes
	DefaultResolveConfirmations = 1
)

// IntervalKey returns the bot_config key holding a poller's interval.
func IntervalKey(poller types.PollerType) string {
	return "polling." + string(poller)
}

func ValidateInterval(seconds int) error {
	if seconds < MinIntervalSeconds {
		return fmt.Errorf("interval must be at least %d seconds", MinIntervalSeconds)
	}
	if seconds > MaxIntervalSeconds {
		return fmt.Errorf("interval must be at most %d seconds", MaxIntervalSeconds)
	}
	return nil
}

// GetInt reads an integer config value, falling back when the key is absent
// or unparsable. The fallback path is logged once per read, not fatal.
func GetInt(db *gorm.DB, key string, fallback int) int {
	var row models.BotConfig

	if err := db.First(&row, "key = ?", key).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to read config %q: %v", key, err)
		} else {
			log.Printf("Missing config %q, using default %d", key, fallback)
		}
		return fallback
	}

	value, err := strconv.Atoi(row.Value)
	if err != nil {
		log.Printf("Invalid config value for %q: %q, using default %d", key, row.Value, fallback)
		return fallback
	}

	return value
}

// SetValue upserts a bot_config row.
func SetValue(db *gorm.DB, key, value string) error {
	row := models.BotConfig{Key: key, Value: value, UpdatedAt: time.Now()}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// LoadInterval reads a poller's interval, falling back to the default when the
// key is absent.
func LoadInterval(db *gorm.DB, poller types.PollerType) time.Duration {
	seconds := GetInt(db, IntervalKey(poller), DefaultIntervalSeconds)
	if err := ValidateInterval(seconds); err != nil {
		log.Printf("Stored interval for %s out of range (%d), using default", poller, seconds)
		seconds = DefaultIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// SetInterval validates and persists a poller's interval.
func SetInterval(db *gorm.DB, poller types.PollerType, seconds int) error {
	if err := ValidateInterval(seconds); err != nil {
		return err
	}
	return SetValue(db, IntervalKey(poller), strconv.Itoa(seconds))
}
