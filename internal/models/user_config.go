package models

import "time"

// UserConfig is a direct-message-scoped alert recipient.
type UserConfig struct {
	UserID     string `gorm:"primaryKey"`
	WebhookURL string
	Enabled    bool `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
