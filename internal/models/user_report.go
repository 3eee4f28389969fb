package models

// UserReport is append-only; rows are never updated after insert.
// GuildID is empty for reports submitted outside a guild context.
type UserReport struct {
	BaseModel

	GuildID  string  `gorm:"index"`
	UserID   string  `gorm:"not null;index"`
	Category string  `gorm:"not null;index"`
	Content  *string `gorm:"type:text"`
	Status   string  `gorm:"not null;default:active"`
}
