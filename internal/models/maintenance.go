package models

import "time"

type Maintenance struct {
	ID             string `gorm:"primaryKey"`
	Title          string `gorm:"not null"`
	Status         string `gorm:"not null;index"`
	ScheduledFor   time.Time
	ScheduledUntil time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
