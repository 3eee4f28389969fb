package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/pulsewatch/db"
	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/statusfeed"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
)

type CurrentStatusResponse struct {
	Indicator   string    `json:"indicator"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ComponentResponse struct {
	ComponentID string    `json:"component_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type IncidentUpdateResponse struct {
	ID          string    `json:"id"`
	Body        string    `json:"body"`
	Status      string    `json:"status"`
	PublishedAt time.Time `json:"published_at"`
}

type IncidentResponse struct {
	ID         string                   `json:"id"`
	Title      string                   `json:"title"`
	Impact     string                   `json:"impact"`
	Status     string                   `json:"status"`
	StartedAt  time.Time                `json:"started_at"`
	ResolvedAt *time.Time               `json:"resolved_at"`
	Updates    []IncidentUpdateResponse `json:"updates"`
}

type MaintenanceResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	ScheduledUntil time.Time `json:"scheduled_until"`
}

// GetDashboard returns the mirrored state in one payload: current status,
// per-component statuses, recent incidents with their updates, and known
// maintenances.
func GetDashboard(ctx *gin.Context) {
	var latest models.StatusLog
	status := CurrentStatusResponse{Indicator: string(types.IndicatorNone)}

	err := db.DB.Order("source_timestamp DESC").First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to load current status: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if err == nil {
		status = CurrentStatusResponse{
			Indicator:   latest.Indicator,
			Description: latest.Description,
			UpdatedAt:   latest.SourceTimestamp,
		}
	}

	components, err := latestComponents()
	if err != nil {
		log.Printf("Failed to load components: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var incidents []models.Incident
	if err := db.DB.Preload("Updates", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("published_at DESC")
	}).Order("started_at DESC").Limit(10).Find(&incidents).Error; err != nil {
		log.Printf("Failed to load incidents: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	incidentResponses := make([]IncidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		updates := make([]IncidentUpdateResponse, 0, len(incident.Updates))
		for _, update := range incident.Updates {
			updates = append(updates, IncidentUpdateResponse{
				ID:          update.ID,
				Body:        update.Body,
				Status:      update.Status,
				PublishedAt: update.PublishedAt,
			})
		}

		incidentResponses = append(incidentResponses, IncidentResponse{
			ID:         incident.ID,
			Title:      incident.Title,
			Impact:     incident.Impact,
			Status:     incident.Status,
			StartedAt:  incident.StartedAt,
			ResolvedAt: incident.ResolvedAt,
			Updates:    updates,
		})
	}

	var maintenances []models.Maintenance
	if err := db.DB.Order("scheduled_for DESC").Limit(10).Find(&maintenances).Error; err != nil {
		log.Printf("Failed to load maintenances: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	maintenanceResponses := make([]MaintenanceResponse, 0, len(maintenances))
	for _, m := range maintenances {
		maintenanceResponses = append(maintenanceResponses, MaintenanceResponse{
			ID:             m.ID,
			Title:          m.Title,
			Status:         m.Status,
			ScheduledFor:   m.ScheduledFor,
			ScheduledUntil: m.ScheduledUntil,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":       status,
		"components":   components,
		"incidents":    incidentResponses,
		"maintenances": maintenanceResponses,
	})
}

// latestComponents returns each component's row from the newest snapshot it
// appears in.
func latestComponents() ([]ComponentResponse, error) {
	var rows []models.ComponentLog

	subquery := db.DB.Model(&models.ComponentLog{}).
		Select("component_id, MAX(source_timestamp) AS max_ts").
		Group("component_id")

	err := db.DB.Joins(
		"JOIN (?) latest ON component_logs.component_id = latest.component_id AND component_logs.source_timestamp = latest.max_ts",
		subquery,
	).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	components := make([]ComponentResponse, 0, len(rows))
	for _, row := range rows {
		components = append(components, ComponentResponse{
			ComponentID: row.ComponentID,
			Name:        row.Name,
			Status:      row.Status,
			UpdatedAt:   row.SourceTimestamp,
		})
	}

	return components, nil
}

type MetricPointResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// GetMetricSeries returns stored samples for one metric, newest last.
// ?hours= bounds the window, default 24, max 168.
func GetMetricSeries(ctx *gin.Context) {
	name := ctx.Param("metric_name")

	known := false
	for _, metric := range statusfeed.Metrics {
		if metric.Name == name {
			known = true
			break
		}
	}
	if !known {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown metric"})
		return
	}

	hours := 24
	if raw := ctx.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 168 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "hours must be between 1 and 168"})
			return
		}
		hours = parsed
	}

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	var rows []models.MetricLog
	err := db.DB.Where("metric_name = ? AND timestamp > ?", name, cutoff).
		Order("timestamp ASC").Find(&rows).Error
	if err != nil {
		log.Printf("Failed to load metric %s: %v", name, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	points := make([]MetricPointResponse, 0, len(rows))
	for _, row := range rows {
		points = append(points, MetricPointResponse{
			Timestamp: row.Timestamp,
			Value:     row.Value,
			Unit:      row.Unit,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"metric": name,
		"points": points,
	})
}
