package models

import "time"

// SentAlert is the dedup ledger. Exactly one of GuildID/UserID is non-empty;
// empty string (not NULL) marks the absent scope so the composite unique index
// enforces at-most-once on every database we run on.
type SentAlert struct {
	BaseModel

	GuildID     string    `gorm:"not null;default:'';uniqueIndex:idx_sent_alerts_lookup"`
	UserID      string    `gorm:"not null;default:'';uniqueIndex:idx_sent_alerts_lookup"`
	AlertType   string    `gorm:"not null;uniqueIndex:idx_sent_alerts_lookup"`
	ReferenceID string    `gorm:"not null;uniqueIndex:idx_sent_alerts_lookup"`
	NotifiedAt  time.Time `gorm:"not null"`
}
