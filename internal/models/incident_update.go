package models

import "time"

// IncidentUpdate is immutable once stored: an update id is never revised,
// only inserted if absent.
type IncidentUpdate struct {
	ID          string `gorm:"primaryKey"`
	IncidentID  string `gorm:"not null;index"`
	Body        string `gorm:"type:text"`
	Status      string `gorm:"not null"`
	PublishedAt time.Time
	CreatedAt   time.Time
}
