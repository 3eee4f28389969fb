package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pulsewatch/pulsewatch/db"
	"github.com/pulsewatch/pulsewatch/internal/alerts"
	"github.com/pulsewatch/pulsewatch/internal/audit"
)

type CreateReportRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	GuildID  string `json:"guild_id"`
	Category string `json:"category" binding:"required"`
	Details  string `json:"details"`
}

// CreateReport accepts one user report. Cooldown rejections return 429 with
// the earliest retry time; unknown categories return 400.
func CreateReport(ctx *gin.Context) {
	var req CreateReportRequest

	if err := ctx.BindJSON(&req); err != nil {
		log.Printf("Failed to bind JSON: %v", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	outcome, err := reportEngine.SubmitReport(ctx.Request.Context(), req.GuildID, req.UserID, req.Category, req.Details)
	if err != nil {
		log.Printf("Failed to submit report: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	switch outcome.Status {
	case alerts.Invalid:
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":      outcome.Reason,
			"categories": alerts.Categories,
		})
	case alerts.Cooldown:
		ctx.JSON(http.StatusTooManyRequests, gin.H{
			"error":    outcome.Reason,
			"retry_at": outcome.RetryAt.Format(time.RFC3339),
		})
	case alerts.Accepted:
		audit.Record(db.DB, "report", req.UserID, req.GuildID, map[string]interface{}{
			"category": req.Category,
		})
		ctx.JSON(http.StatusCreated, gin.H{
			"message":       "Report submitted",
			"category":      req.Category,
			"similar_count": outcome.SimilarCount,
		})
	}
}
