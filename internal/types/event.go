package types

import "time"

// EventType classifies a lifecycle event produced by reconciliation or by the
// report threshold engine. The type doubles as the alert_type column in the
// dedup ledger.
type EventType string

const (
	EventStatusChanged        EventType = "status_changed"
	EventIncidentNew          EventType = "incident_new"
	EventIncidentUpdate       EventType = "incident_update"
	EventIncidentResolved     EventType = "incident_resolved"
	EventMaintenanceScheduled EventType = "maintenance_scheduled"
	EventMaintenanceStarted   EventType = "maintenance_started"
	EventMaintenanceCompleted EventType = "maintenance_completed"
	EventThreshold            EventType = "threshold"
)

// Event is one discrete, once-only occurrence derived from mirrored state.
// Reference must be stable across re-polls: the dedup ledger keys on
// (recipient, Type, Reference), so re-emitting the same event is harmless.
type Event struct {
	Type        EventType
	Reference   string
	Title       string
	Description string
	Timestamp   time.Time
}
