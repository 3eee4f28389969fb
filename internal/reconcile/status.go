package reconcile

import (
	"errors"
	"fmt"
	"log"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/statusfeed"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status reconciles one aggregate-status snapshot. Re-polling an unchanged
// snapshot (same source timestamp) writes nothing and emits nothing; a fresh
// timestamp inserts a row and, when the indicator moved, emits status_changed.
func Status(db *gorm.DB, summary *statusfeed.Summary) ([]types.Event, error) {
	sourceTimestamp := summary.Page.UpdatedAt

	var prev models.StatusLog
	prevFound := true
	err := db.Where("source_timestamp < ?", sourceTimestamp).
		Order("source_timestamp DESC").
		First(&prev).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load previous status: %w", err)
		}
		prevFound = false
	}

	row := models.StatusLog{
		Indicator:       summary.Status.Indicator,
		Description:     summary.Status.Description,
		SourceTimestamp: sourceTimestamp,
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_timestamp"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("insert status log: %w", result.Error)
	}

	var events []types.Event

	if result.RowsAffected > 0 {
		log.Printf("Inserted status log: indicator=%s", summary.Status.Indicator)

		if !prevFound || prev.Indicator != summary.Status.Indicator {
			events = append(events, types.Event{
				Type:        types.EventStatusChanged,
				Reference:   fmt.Sprintf("%s_%d", summary.Status.Indicator, sourceTimestamp.Unix()),
				Title:       "Service status changed",
				Description: summary.Status.Description,
				Timestamp:   sourceTimestamp,
			})
		}
	}

	// Component statuses are persisted independently, same dedup rule, no
	// cross-component events.
	for _, component := range summary.Components {
		componentRow := models.ComponentLog{
			ComponentID:     component.ID,
			Name:            component.Name,
			Status:          component.Status,
			SourceTimestamp: sourceTimestamp,
		}

		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "component_id"}, {Name: "source_timestamp"}},
			DoNothing: true,
		}).Create(&componentRow).Error
		if err != nil {
			return events, fmt.Errorf("insert component log %s: %w", component.ID, err)
		}
	}

	return events, nil
}
