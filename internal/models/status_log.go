package models

import "time"

// StatusLog is one aggregate status snapshot. SourceTimestamp is assigned by
// the feed and is the dedup key: re-fetching an unchanged snapshot is a no-op.
type StatusLog struct {
	BaseModel

	Indicator       string    `gorm:"not null"`
	Description     string    `gorm:"type:text"`
	SourceTimestamp time.Time `gorm:"not null;uniqueIndex"`
}
