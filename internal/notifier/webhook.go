package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/types"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

const (
	ColorRed    = 16711680 // #FF0000 - incident opened
	ColorGreen  = 65280    // #00FF00 - resolved / completed
	ColorOrange = 16753920 // #FFA500 - status change, updates, threshold

	Username = "Pulsewatch"
)

// WebhookDeliverer posts events as Discord webhook embeds to the recipient's
// configured webhook URL.
type WebhookDeliverer struct {
	client *http.Client
}

func NewWebhookDeliverer() *WebhookDeliverer {
	return &WebhookDeliverer{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *WebhookDeliverer) Deliver(ctx context.Context, recipient Recipient, event types.Event) error {
	if recipient.WebhookURL == "" {
		return fmt.Errorf("recipient %s has no webhook URL", recipient)
	}

	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds:   []DiscordEmbed{buildEmbed(event)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recipient.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func buildEmbed(event types.Event) DiscordEmbed {
	title, color := embedStyle(event)

	return DiscordEmbed{
		Title:       title,
		Description: event.Description,
		Color:       color,
		Fields: []DiscordWebhookField{
			{Name: "Subject", Value: event.Title, Inline: true},
			{Name: "Occurred At", Value: event.Timestamp.Format("2006-01-02 15:04:05 UTC"), Inline: true},
		},
		Footer:    &DiscordFooter{Text: "Pulsewatch Status Monitoring"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func embedStyle(event types.Event) (string, int) {
	switch event.Type {
	case types.EventStatusChanged:
		return "📡 Service Status Changed", ColorOrange
	case types.EventIncidentNew:
		return "🚨 New Incident", ColorRed
	case types.EventIncidentUpdate:
		return "📝 Incident Update", ColorOrange
	case types.EventIncidentResolved:
		return "✅ Incident Resolved", ColorGreen
	case types.EventMaintenanceScheduled:
		return "🗓️ Maintenance Scheduled", ColorOrange
	case types.EventMaintenanceStarted:
		return "🔧 Maintenance Started", ColorOrange
	case types.EventMaintenanceCompleted:
		return "✅ Maintenance Completed", ColorGreen
	case types.EventThreshold:
		return "⚠️ User Report Threshold Reached", ColorOrange
	default:
		return "Pulsewatch Notification", ColorOrange
	}
}
