package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/pulsewatch/db"
	"github.com/pulsewatch/pulsewatch/internal/audit"
	"github.com/pulsewatch/pulsewatch/internal/config"
	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm/clause"
)

// GetIntervals returns the current polling interval per poll task, in seconds.
func GetIntervals(ctx *gin.Context) {
	intervals := make(map[string]int)
	for _, poller := range types.AllPollers() {
		intervals[string(poller)] = int(intervalRegistry.Current(poller).Seconds())
	}

	ctx.JSON(http.StatusOK, gin.H{
		"intervals":   intervals,
		"min_seconds": config.MinIntervalSeconds,
		"max_seconds": config.MaxIntervalSeconds,
	})
}

type UpdateIntervalRequest struct {
	Seconds int `json:"seconds" binding:"required"`
}

// UpdateInterval changes one poll task's interval. The running poller adopts
// the new value without restarting.
func UpdateInterval(ctx *gin.Context) {
	poller, ok := types.ParsePoller(ctx.Param("poller"))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown poller"})
		return
	}

	var req UpdateIntervalRequest
	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := intervalRegistry.Update(poller, req.Seconds); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audit.Record(db.DB, "set_interval", "admin", "", map[string]interface{}{
		"poller":  string(poller),
		"seconds": req.Seconds,
	})

	ctx.JSON(http.StatusOK, gin.H{
		"poller":  string(poller),
		"seconds": req.Seconds,
	})
}

// ResetIntervals restores every poll task to the default interval.
func ResetIntervals(ctx *gin.Context) {
	if err := intervalRegistry.ResetAll(); err != nil {
		log.Printf("Failed to reset intervals: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(db.DB, "reset_intervals", "admin", "", nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "All intervals reset", "seconds": config.DefaultIntervalSeconds})
}

// GetReportConfig returns the threshold engine's runtime settings.
func GetReportConfig(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"threshold":             config.GetInt(db.DB, config.KeyReportThreshold, config.DefaultReportThreshold),
		"interval_minutes":      config.GetInt(db.DB, config.KeyReportInterval, config.DefaultReportInterval),
		"resolve_confirmations": config.GetInt(db.DB, config.KeyResolveConfirmations, config.DefaultResolveConfirmations),
	})
}

type UpdateReportConfigRequest struct {
	Threshold            *int `json:"threshold"`
	IntervalMinutes      *int `json:"interval_minutes"`
	ResolveConfirmations *int `json:"resolve_confirmations"`
}

// UpdateReportConfig changes threshold engine settings. Only supplied fields
// are written; each takes effect on the next evaluation.
func UpdateReportConfig(ctx *gin.Context) {
	var req UpdateReportConfigRequest
	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]int)

	if req.Threshold != nil {
		if *req.Threshold < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be at least 1"})
			return
		}
		updates[config.KeyReportThreshold] = *req.Threshold
	}

	if req.IntervalMinutes != nil {
		if *req.IntervalMinutes < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "interval_minutes must be at least 1"})
			return
		}
		updates[config.KeyReportInterval] = *req.IntervalMinutes
	}

	if req.ResolveConfirmations != nil {
		if *req.ResolveConfirmations < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "resolve_confirmations must be at least 1"})
			return
		}
		updates[config.KeyResolveConfirmations] = *req.ResolveConfirmations
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	for key, value := range updates {
		if err := config.SetValue(db.DB, key, strconv.Itoa(value)); err != nil {
			log.Printf("Failed to update config %q: %v", key, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	audit.Record(db.DB, "set_report_config", "admin", "", map[string]interface{}{
		"updates": updates,
	})

	GetReportConfig(ctx)
}

type RegisterGuildRequest struct {
	ChannelID  string `json:"channel_id"`
	WebhookURL string `json:"webhook_url" binding:"required"`
	Enabled    *bool  `json:"enabled"`
}

// RegisterGuild upserts a guild recipient. Re-registering updates the webhook
// in place.
func RegisterGuild(ctx *gin.Context) {
	guildID := ctx.Param("guild_id")

	var req RegisterGuildRequest
	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	row := models.GuildConfig{
		GuildID:    guildID,
		ChannelID:  req.ChannelID,
		WebhookURL: req.WebhookURL,
		Enabled:    enabled,
	}

	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"channel_id", "webhook_url", "enabled", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		log.Printf("Failed to register guild %s: %v", guildID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(db.DB, "register_guild", "admin", guildID, map[string]interface{}{
		"enabled": enabled,
	})

	ctx.JSON(http.StatusOK, gin.H{"guild_id": guildID, "enabled": enabled})
}

// UnregisterGuild removes a guild recipient.
func UnregisterGuild(ctx *gin.Context) {
	guildID := ctx.Param("guild_id")

	if err := db.DB.Delete(&models.GuildConfig{}, "guild_id = ?", guildID).Error; err != nil {
		log.Printf("Failed to unregister guild %s: %v", guildID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(db.DB, "unregister_guild", "admin", guildID, nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "Guild unregistered"})
}

type RegisterUserRequest struct {
	WebhookURL string `json:"webhook_url" binding:"required"`
	Enabled    *bool  `json:"enabled"`
}

// RegisterUser upserts a user recipient.
func RegisterUser(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	var req RegisterUserRequest
	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	row := models.UserConfig{
		UserID:     userID,
		WebhookURL: req.WebhookURL,
		Enabled:    enabled,
	}

	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"webhook_url", "enabled", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		log.Printf("Failed to register user %s: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(db.DB, "register_user", userID, "", map[string]interface{}{
		"enabled": enabled,
	})

	ctx.JSON(http.StatusOK, gin.H{"user_id": userID, "enabled": enabled})
}

// UnregisterUser removes a user recipient.
func UnregisterUser(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	if err := db.DB.Delete(&models.UserConfig{}, "user_id = ?", userID).Error; err != nil {
		log.Printf("Failed to unregister user %s: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	audit.Record(db.DB, "unregister_user", userID, "", nil)

	ctx.JSON(http.StatusOK, gin.H{"message": "User unregistered"})
}
