package models

import "time"

type MetricLog struct {
	BaseModel

	MetricName  string    `gorm:"not null;uniqueIndex:idx_metric_logs_name_time"`
	Value       float64   `gorm:"not null"`
	Unit        string    `gorm:"not null"`
	IntervalSec int       `gorm:"not null"`
	Timestamp   time.Time `gorm:"not null;uniqueIndex:idx_metric_logs_name_time"`
}
