package reconcile

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/statusfeed"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
)

// PlanMaintenance decides what one maintenance id needs, as a pure function of
// (stored row, upcoming entry, active entry, now). It returns the row to write
// (nil for no write) and the lifecycle events that occurred.
//
// Transition rules:
//   - first sighting inserts the row and emits maintenance_scheduled
//   - scheduled -> in_progress when the id appears in the active feed
//   - in_progress -> completed only when absent from the active feed AND now
//     is past scheduled_until; absence alone never completes (feed jitter)
//   - scheduled -> completed when scheduled_until passes without the id ever
//     going active, with no started event
//
// A title change alone never forces a rewrite.
func PlanMaintenance(stored *models.Maintenance, upcoming, active *statusfeed.Maintenance, now time.Time) (*models.Maintenance, []types.Event) {
	incoming := upcoming
	if active != nil {
		incoming = active
	}

	if stored == nil {
		if incoming == nil {
			return nil, nil
		}

		row := &models.Maintenance{
			ID:             incoming.ID,
			Title:          incoming.Name,
			Status:         incoming.Status,
			ScheduledFor:   incoming.ScheduledFor,
			ScheduledUntil: incoming.ScheduledUntil,
			CreatedAt:      incoming.CreatedAt,
			UpdatedAt:      incoming.UpdatedAt,
		}

		events := []types.Event{{
			Type:        types.EventMaintenanceScheduled,
			Reference:   incoming.ID,
			Title:       incoming.Name,
			Description: fmt.Sprintf("Scheduled for %s", incoming.ScheduledFor.Format(time.RFC3339)),
			Timestamp:   incoming.CreatedAt,
		}}

		if incoming.Status == string(types.MaintenanceInProgress) {
			events = append(events, types.Event{
				Type:        types.EventMaintenanceStarted,
				Reference:   incoming.ID,
				Title:       incoming.Name,
				Description: "Maintenance is now in progress.",
				Timestamp:   incoming.UpdatedAt,
			})
		}

		return row, events
	}

	if incoming != nil {
		changed := stored.Status != incoming.Status ||
			!stored.ScheduledFor.Equal(incoming.ScheduledFor) ||
			!stored.ScheduledUntil.Equal(incoming.ScheduledUntil)

		var events []types.Event
		if stored.Status == string(types.MaintenanceScheduled) && incoming.Status == string(types.MaintenanceInProgress) {
			events = append(events, types.Event{
				Type:        types.EventMaintenanceStarted,
				Reference:   incoming.ID,
				Title:       incoming.Name,
				Description: "Maintenance is now in progress.",
				Timestamp:   incoming.UpdatedAt,
			})
		}

		if !changed {
			return nil, events
		}

		row := *stored
		row.Title = incoming.Name
		row.Status = incoming.Status
		row.ScheduledFor = incoming.ScheduledFor
		row.ScheduledUntil = incoming.ScheduledUntil
		row.UpdatedAt = incoming.UpdatedAt
		return &row, events
	}

	// Known row, absent from both feeds.
	switch stored.Status {
	case string(types.MaintenanceInProgress), string(types.MaintenanceScheduled):
		if !now.After(stored.ScheduledUntil) {
			return nil, nil
		}

		row := *stored
		row.Status = string(types.MaintenanceCompleted)
		row.UpdatedAt = now

		return &row, []types.Event{{
			Type:        types.EventMaintenanceCompleted,
			Reference:   stored.ID,
			Title:       stored.Title,
			Description: "Maintenance has been completed.",
			Timestamp:   now,
		}}
	}

	return nil, nil
}

// Maintenances reconciles the upcoming and active feeds against the store.
func Maintenances(db *gorm.DB, upcoming, active []statusfeed.Maintenance, now time.Time) ([]types.Event, error) {
	upcomingByID := make(map[string]*statusfeed.Maintenance, len(upcoming))
	for i := range upcoming {
		upcomingByID[upcoming[i].ID] = &upcoming[i]
	}
	activeByID := make(map[string]*statusfeed.Maintenance, len(active))
	for i := range active {
		activeByID[active[i].ID] = &active[i]
	}

	ids := make(map[string]bool)
	for id := range upcomingByID {
		ids[id] = true
	}
	for id := range activeByID {
		ids[id] = true
	}

	var open []models.Maintenance
	if err := db.Where("status <> ?", string(types.MaintenanceCompleted)).Find(&open).Error; err != nil {
		return nil, fmt.Errorf("load open maintenances: %w", err)
	}
	for _, m := range open {
		ids[m.ID] = true
	}

	var events []types.Event

	for id := range ids {
		stored, err := loadMaintenance(db, id)
		if err != nil {
			return events, err
		}

		row, planned := PlanMaintenance(stored, upcomingByID[id], activeByID[id], now)

		if row != nil {
			if err := db.Save(row).Error; err != nil {
				return events, fmt.Errorf("save maintenance %s: %w", id, err)
			}
			log.Printf("Saved maintenance %s: status=%s", id, row.Status)
		}

		events = append(events, planned...)
	}

	return events, nil
}

func loadMaintenance(db *gorm.DB, id string) (*models.Maintenance, error) {
	var stored models.Maintenance
	err := db.First(&stored, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load maintenance %s: %w", id, err)
	}
	return &stored, nil
}
