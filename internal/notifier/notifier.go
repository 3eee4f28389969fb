package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"gorm.io/gorm"
)

// Recipient is a delivery target: guild-scoped (posts to a channel) or
// user-scoped (posts privately). Exactly one of GuildID/UserID is set.
type Recipient struct {
	GuildID    string
	UserID     string
	WebhookURL string
}

func GuildRecipient(guildID, webhookURL string) Recipient {
	return Recipient{GuildID: guildID, WebhookURL: webhookURL}
}

func UserRecipient(userID, webhookURL string) Recipient {
	return Recipient{UserID: userID, WebhookURL: webhookURL}
}

func (r Recipient) String() string {
	if r.GuildID != "" {
		return "guild:" + r.GuildID
	}
	return "user:" + r.UserID
}

// Deliverer renders and sends one event to one recipient. How delivery is
// rendered is outside the core's concern.
type Deliverer interface {
	Deliver(ctx context.Context, recipient Recipient, event types.Event) error
}

// Notifier fans events out to recipients with at-most-once semantics backed
// by the sent_alerts ledger. The order is record-then-send: a ledger row that
// commits but whose delivery then fails counts as sent and is never retried.
// Never double-sending is preferred over never missing a send.
type Notifier struct {
	db        *gorm.DB
	deliverer Deliverer
}

func New(db *gorm.DB, deliverer Deliverer) *Notifier {
	return &Notifier{db: db, deliverer: deliverer}
}

// Notify attempts delivery of one event to each recipient. Returns how many
// were sent and how many were skipped as already notified. Per-recipient
// failures are logged, never propagated.
func (n *Notifier) Notify(ctx context.Context, event types.Event, recipients []Recipient) (sent, skipped int) {
	for _, recipient := range recipients {
		recorded, err := n.record(recipient, event)
		if err != nil {
			log.Printf("Failed to record alert for %s: %v", recipient, err)
			continue
		}

		if !recorded {
			skipped++
			continue
		}

		if err := n.deliverer.Deliver(ctx, recipient, event); err != nil {
			// The ledger row stays: the alert counts as sent.
			log.Printf("Delivery to %s failed for %s %s (not retried): %v", recipient, event.Type, event.Reference, err)
		}

		sent++
	}

	return sent, skipped
}

// record inserts the dedup ledger row. A uniqueness violation is the expected
// already-sent outcome, not an error.
func (n *Notifier) record(recipient Recipient, event types.Event) (bool, error) {
	row := models.SentAlert{
		GuildID:     recipient.GuildID,
		UserID:      recipient.UserID,
		AlertType:   string(event.Type),
		ReferenceID: event.Reference,
		NotifiedAt:  time.Now(),
	}

	err := n.db.Create(&row).Error
	if err == nil {
		return true, nil
	}

	if isDuplicateErr(err) {
		return false, nil
	}

	return false, fmt.Errorf("insert sent alert: %w", err)
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// ResolveRecipients loads the currently registered, enabled recipients.
// Resolved at alert time, never cached, so new registrations take effect on
// the next event and disabled recipients are silently skipped.
func ResolveRecipients(db *gorm.DB) []Recipient {
	var recipients []Recipient

	var guilds []models.GuildConfig
	if err := db.Where("enabled = ? AND webhook_url <> ''", true).Find(&guilds).Error; err != nil {
		log.Printf("Failed to load guild recipients: %v", err)
	} else {
		for _, guild := range guilds {
			recipients = append(recipients, GuildRecipient(guild.GuildID, guild.WebhookURL))
		}
	}

	var users []models.UserConfig
	if err := db.Where("enabled = ? AND webhook_url <> ''", true).Find(&users).Error; err != nil {
		log.Printf("Failed to load user recipients: %v", err)
	} else {
		for _, user := range users {
			recipients = append(recipients, UserRecipient(user.UserID, user.WebhookURL))
		}
	}

	return recipients
}
