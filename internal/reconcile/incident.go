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
	"gorm.io/gorm/clause"
)

// IncidentReconciler mirrors the unresolved-incidents feed. The feed removes
// resolved incidents instead of flagging them, so resolution is inferred from
// omission: an id we hold as unresolved that is absent from the fresh feed is
// transitioned to resolved. The caller must only invoke Reconcile with a
// successfully fetched list; a failed fetch must abort upstream so omission is
// never inferred from a failed call.
type IncidentReconciler struct {
	db *gorm.DB

	// Consecutive missing-from-feed observations per incident id. Kept in
	// memory; a restart resets streaks, which only delays resolution by one
	// extra pass when confirmations > 1.
	misses map[string]int
}

func NewIncidentReconciler(db *gorm.DB) *IncidentReconciler {
	return &IncidentReconciler{db: db, misses: make(map[string]int)}
}

// Reconcile applies one fetched snapshot. confirmations is the number of
// consecutive missing observations required before resolving (minimum 1).
// An empty feed list is valid: every stored unresolved incident is a
// resolution candidate.
func (r *IncidentReconciler) Reconcile(feed []statusfeed.Incident, now time.Time, confirmations int) ([]types.Event, error) {
	if confirmations < 1 {
		confirmations = 1
	}

	feedIDs := make(map[string]bool, len(feed))
	for _, incident := range feed {
		feedIDs[incident.ID] = true
	}

	var unresolved []models.Incident
	if err := r.db.Where("status <> ?", string(types.IncidentResolved)).Find(&unresolved).Error; err != nil {
		return nil, fmt.Errorf("load unresolved incidents: %w", err)
	}

	var events []types.Event

	for _, stored := range unresolved {
		if feedIDs[stored.ID] {
			delete(r.misses, stored.ID)
			continue
		}

		r.misses[stored.ID]++
		if r.misses[stored.ID] < confirmations {
			log.Printf("Incident %s missing from feed (%d/%d confirmations)", stored.ID, r.misses[stored.ID], confirmations)
			continue
		}

		updates := map[string]interface{}{
			"status":     string(types.IncidentResolved),
			"updated_at": now,
		}
		if stored.ResolvedAt == nil {
			updates["resolved_at"] = now
		}

		if err := r.db.Model(&models.Incident{}).Where("id = ?", stored.ID).Updates(updates).Error; err != nil {
			return events, fmt.Errorf("resolve incident %s: %w", stored.ID, err)
		}

		delete(r.misses, stored.ID)
		log.Printf("Marked incident %s as resolved", stored.ID)

		events = append(events, types.Event{
			Type:        types.EventIncidentResolved,
			Reference:   stored.ID,
			Title:       stored.Title,
			Description: "The incident has been resolved.",
			Timestamp:   now,
		})
	}

	for _, incident := range feed {
		incidentEvents, err := r.upsertIncident(&incident, now)
		if err != nil {
			return events, err
		}
		events = append(events, incidentEvents...)
	}

	return events, nil
}

func (r *IncidentReconciler) upsertIncident(incident *statusfeed.Incident, now time.Time) ([]types.Event, error) {
	var events []types.Event

	var existing models.Incident
	err := r.db.First(&existing, "id = ?", incident.ID).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := models.Incident{
			ID:        incident.ID,
			Title:     incident.Name,
			Impact:    incident.Impact,
			Status:    incident.Status,
			StartedAt: incident.CreatedAt,
			CreatedAt: incident.CreatedAt,
			UpdatedAt: incident.UpdatedAt,
		}
		if err := r.db.Create(&row).Error; err != nil {
			return nil, fmt.Errorf("insert incident %s: %w", incident.ID, err)
		}

		log.Printf("Inserted new incident %s: %s", incident.ID, incident.Name)
		events = append(events, types.Event{
			Type:        types.EventIncidentNew,
			Reference:   incident.ID,
			Title:       incident.Name,
			Description: fmt.Sprintf("Impact: %s, status: %s", incident.Impact, incident.Status),
			Timestamp:   incident.CreatedAt,
		})

	case err != nil:
		return nil, fmt.Errorf("load incident %s: %w", incident.ID, err)

	default:
		statusChanged := existing.Status != incident.Status
		titleChanged := existing.Title != incident.Name
		needsWrite := statusChanged || titleChanged ||
			existing.Impact != incident.Impact ||
			!existing.UpdatedAt.Equal(incident.UpdatedAt)

		if needsWrite {
			updates := map[string]interface{}{
				"title":      incident.Name,
				"impact":     incident.Impact,
				"status":     incident.Status,
				"updated_at": incident.UpdatedAt,
			}
			if err := r.db.Model(&models.Incident{}).Where("id = ?", incident.ID).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("update incident %s: %w", incident.ID, err)
			}
		}

		if statusChanged || titleChanged {
			events = append(events, types.Event{
				Type: types.EventIncidentUpdate,
				// Reference includes the new status so each distinct
				// transition notifies once across re-polls.
				Reference:   fmt.Sprintf("%s:%s", incident.ID, incident.Status),
				Title:       incident.Name,
				Description: fmt.Sprintf("Status: %s", incident.Status),
				Timestamp:   incident.UpdatedAt,
			})
		}
	}

	for _, update := range incident.IncidentUpdates {
		updateEvent, err := r.insertUpdate(incident, &update)
		if err != nil {
			return events, err
		}
		if updateEvent != nil {
			events = append(events, *updateEvent)
		}
	}

	return events, nil
}

// insertUpdate stores a nested update row if its id is unseen. Update rows
// are immutable; an existing id is never rewritten.
func (r *IncidentReconciler) insertUpdate(incident *statusfeed.Incident, update *statusfeed.IncidentUpdate) (*types.Event, error) {
	row := models.IncidentUpdate{
		ID:          update.ID,
		IncidentID:  incident.ID,
		Body:        update.Body,
		Status:      update.Status,
		PublishedAt: update.CreatedAt,
		CreatedAt:   update.CreatedAt,
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("insert incident update %s: %w", update.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, nil
	}

	return &types.Event{
		Type:        types.EventIncidentUpdate,
		Reference:   update.ID,
		Title:       incident.Name,
		Description: update.Body,
		Timestamp:   update.CreatedAt,
	}, nil
}
