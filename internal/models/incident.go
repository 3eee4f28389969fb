package models

import "time"

// Incident mirrors one feed incident, keyed by the feed's stable external id.
// Rows are mutated only by reconciliation; ResolvedAt is set exactly once.
type Incident struct {
	ID         string `gorm:"primaryKey"`
	Title      string `gorm:"not null"`
	Impact     string `gorm:"not null"`
	Status     string `gorm:"not null;index"`
	StartedAt  time.Time
	ResolvedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Relationships
	Updates []IncidentUpdate `gorm:"foreignKey:IncidentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
