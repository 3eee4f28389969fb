package models

import "time"

// GuildConfig is a channel-scoped alert recipient.
type GuildConfig struct {
	GuildID    string `gorm:"primaryKey"`
	ChannelID  string
	WebhookURL string
	Enabled    bool `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
