package models

import "time"

// BotConfig is the flat key/value store for runtime-tunable settings
// (poll intervals, report threshold parameters). Hot-reloadable.
type BotConfig struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}
