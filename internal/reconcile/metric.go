package reconcile

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/statusfeed"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Metrics inserts new samples for one series. Pure insert-if-absent on
// (metric_name, timestamp); no events are emitted, metrics feed the
// visualization path only.
func Metrics(db *gorm.DB, metric statusfeed.MetricDefinition, points []statusfeed.MetricPoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	latest, err := latestMetricTimestamp(db, metric.Name)
	if err != nil {
		return 0, err
	}

	inserted := 0

	for _, point := range points {
		timestamp := time.Unix(point.Timestamp, 0).UTC()

		if latest != nil && !timestamp.After(*latest) {
			continue
		}

		row := models.MetricLog{
			MetricName:  metric.Name,
			Value:       point.Value,
			Unit:        metric.Unit,
			IntervalSec: statusfeed.MetricIntervalSec,
			Timestamp:   timestamp,
		}

		// The unique index backstops concurrent inserts past the
		// latest-timestamp cursor.
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "metric_name"}, {Name: "timestamp"}},
			DoNothing: true,
		}).Create(&row)
		if result.Error != nil {
			return inserted, fmt.Errorf("insert metric %s: %w", metric.Name, result.Error)
		}

		inserted += int(result.RowsAffected)
	}

	if inserted > 0 {
		log.Printf("Inserted %d data points for metric %s", inserted, metric.Name)
	}

	return inserted, nil
}

func latestMetricTimestamp(db *gorm.DB, name string) (*time.Time, error) {
	var row models.MetricLog
	err := db.Where("metric_name = ?", name).Order("timestamp DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest timestamp for %s: %w", name, err)
	}
	return &row.Timestamp, nil
}
