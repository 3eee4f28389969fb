package alerts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/config"
	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/notifier"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
)

// Categories a user report can target.
var Categories = []string{"login", "instance", "api", "auth", "download", "other"}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

const (
	// Per-user cooldown between accepted reports, across all categories.
	CooldownMinutes = 5

	// Free-text details are truncated past this length.
	MaxDetailsLen = 500
)

type OutcomeStatus string

const (
	Accepted OutcomeStatus = "accepted"
	Cooldown OutcomeStatus = "cooldown"
	Invalid  OutcomeStatus = "invalid"
)

// Outcome is the result of one report submission. RetryAt is set only for
// cooldown rejections. SimilarCount is how many other users reported the same
// category inside the current window, for the acknowledgement message.
type Outcome struct {
	Status       OutcomeStatus
	Reason       string
	RetryAt      time.Time
	SimilarCount int64
}

// Engine accepts user reports and fires a threshold alert when enough distinct
// users report the same category inside the configured window.
type Engine struct {
	db       *gorm.DB
	notifier *notifier.Notifier

	// now is swappable for tests.
	now func() time.Time
}

func NewEngine(db *gorm.DB, n *notifier.Notifier) *Engine {
	return &Engine{db: db, notifier: n, now: time.Now}
}

// SubmitReport validates, rate-limits and stores one report, then evaluates
// the category threshold. guildID is empty outside a guild context and details
// may be empty.
func (e *Engine) SubmitReport(ctx context.Context, guildID, userID, category, details string) (Outcome, error) {
	if !ValidCategory(category) {
		return Outcome{Status: Invalid, Reason: fmt.Sprintf("unknown category %q", category)}, nil
	}
	if userID == "" {
		return Outcome{Status: Invalid, Reason: "user id is required"}, nil
	}

	if len(details) > MaxDetailsLen {
		details = details[:MaxDetailsLen]
	}

	now := e.now()
	cutoff := now.Add(-CooldownMinutes * time.Minute)

	var last models.UserReport
	err := e.db.Where("user_id = ? AND status = ? AND created_at > ?", userID, "active", cutoff).
		Order("created_at DESC").First(&last).Error
	if err == nil {
		return Outcome{
			Status:  Cooldown,
			Reason:  "you recently submitted a report",
			RetryAt: last.CreatedAt.Add(CooldownMinutes * time.Minute),
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Outcome{}, fmt.Errorf("check report cooldown: %w", err)
	}

	row := models.UserReport{
		BaseModel: models.BaseModel{CreatedAt: now},
		GuildID:   guildID,
		UserID:    userID,
		Category:  category,
		Status:    "active",
	}
	if details != "" {
		row.Content = &details
	}

	if err := e.db.Create(&row).Error; err != nil {
		return Outcome{}, fmt.Errorf("insert report: %w", err)
	}

	outcome, err := e.settleRace(&row, cutoff)
	if err != nil {
		return Outcome{}, err
	}
	if outcome != nil {
		return *outcome, nil
	}

	similar, err := e.similarReportCount(category, userID, now)
	if err != nil {
		log.Printf("Failed to count similar reports: %v", err)
	}

	e.CheckThreshold(ctx, category)

	return Outcome{Status: Accepted, SimilarCount: similar}, nil
}

// settleRace handles two submissions from the same user landing between the
// cooldown check and the insert. The earliest row in the window wins, ties
// broken by id; losers are deleted. Returns a cooldown outcome when ours lost,
// nil when ours survived.
func (e *Engine) settleRace(ours *models.UserReport, cutoff time.Time) (*Outcome, error) {
	var window []models.UserReport
	err := e.db.Where("user_id = ? AND status = ? AND created_at > ?", ours.UserID, "active", cutoff).
		Order("created_at ASC, id ASC").Find(&window).Error
	if err != nil {
		return nil, fmt.Errorf("recheck report window: %w", err)
	}

	if len(window) <= 1 {
		return nil, nil
	}

	winner := window[0]

	if winner.ID != ours.ID {
		if err := e.db.Delete(&models.UserReport{}, ours.ID).Error; err != nil {
			return nil, fmt.Errorf("delete raced report: %w", err)
		}
		return &Outcome{
			Status:  Cooldown,
			Reason:  "you recently submitted a report",
			RetryAt: winner.CreatedAt.Add(CooldownMinutes * time.Minute),
		}, nil
	}

	for _, loser := range window[1:] {
		if err := e.db.Delete(&models.UserReport{}, loser.ID).Error; err != nil {
			return nil, fmt.Errorf("delete raced report: %w", err)
		}
	}

	return nil, nil
}

// CheckThreshold counts distinct reporters for the category inside the
// configured window and fires one alert per recipient when the threshold is
// met. The dedup ledger suppresses repeat alerts for the same 15-minute block.
func (e *Engine) CheckThreshold(ctx context.Context, category string) {
	threshold := config.GetInt(e.db, config.KeyReportThreshold, config.DefaultReportThreshold)
	intervalMinutes := config.GetInt(e.db, config.KeyReportInterval, config.DefaultReportInterval)

	now := e.now()
	cutoff := now.Add(-time.Duration(intervalMinutes) * time.Minute)

	var reporters int64
	err := e.db.Model(&models.UserReport{}).
		Where("category = ? AND status = ? AND created_at > ?", category, "active", cutoff).
		Distinct("user_id").Count(&reporters).Error
	if err != nil {
		log.Printf("Failed to count reporters for %s: %v", category, err)
		return
	}

	if reporters < int64(threshold) {
		return
	}

	event := types.Event{
		Type:        types.EventThreshold,
		Reference:   ThresholdReference(category, now),
		Title:       fmt.Sprintf("Elevated %s reports", category),
		Description: fmt.Sprintf("%d users reported %s issues in the last %d minutes.", reporters, category, intervalMinutes),
		Timestamp:   now,
	}

	recipients := notifier.ResolveRecipients(e.db)
	sent, skipped := e.notifier.Notify(ctx, event, recipients)
	log.Printf("Threshold alert for %s: %d sent, %d skipped", category, sent, skipped)
}

// ThresholdReference pins a threshold alert to the 15-minute block containing
// now, so a category staying above threshold re-alerts at most four times an
// hour.
func ThresholdReference(category string, now time.Time) string {
	utc := now.UTC()
	block := (utc.Minute() / 15) * 15
	return fmt.Sprintf("threshold_%s_%s:%02d", category, utc.Format("2006-01-02T15"), block)
}

// similarReportCount counts other users who reported the same category inside
// the current window.
func (e *Engine) similarReportCount(category, excludeUserID string, now time.Time) (int64, error) {
	intervalMinutes := config.GetInt(e.db, config.KeyReportInterval, config.DefaultReportInterval)
	cutoff := now.Add(-time.Duration(intervalMinutes) * time.Minute)

	var count int64
	err := e.db.Model(&models.UserReport{}).
		Where("category = ? AND status = ? AND created_at > ? AND user_id <> ?", category, "active", cutoff, excludeUserID).
		Distinct("user_id").Count(&count).Error
	return count, err
}
