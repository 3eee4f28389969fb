package models

import "time"

// BaseModel is used by append-only log tables that never soft-delete.
type BaseModel struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
}
