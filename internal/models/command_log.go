package models

import (
	"time"

	"gorm.io/datatypes"
)

// CommandLog is the audit trail for report submissions and admin actions.
type CommandLog struct {
	BaseModel

	Command    string `gorm:"not null"`
	UserID     string `gorm:"not null;index"`
	GuildID    string `gorm:"index"`
	Args       datatypes.JSON
	ExecutedAt time.Time `gorm:"not null"`
}
