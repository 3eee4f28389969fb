package models

import "time"

type ComponentLog struct {
	BaseModel

	ComponentID     string    `gorm:"not null;uniqueIndex:idx_component_logs_source"`
	Name            string    `gorm:"not null"`
	Status          string    `gorm:"not null"`
	SourceTimestamp time.Time `gorm:"not null;uniqueIndex:idx_component_logs_source"`
}
