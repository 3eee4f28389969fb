package statusfeed

import (
	"encoding/json"
	"fmt"
	"time"
)

// Response types for the Statuspage-style API. Only the fields the
// reconcilers depend on are decoded; source timestamps are kept verbatim.

type Summary struct {
	Page       PageInfo    `json:"page"`
	Status     StatusInfo  `json:"status"`
	Components []Component `json:"components"`
}

type PageInfo struct {
	UpdatedAt time.Time `json:"updated_at"`
}

type StatusInfo struct {
	// none | minor | major | critical
	Indicator   string `json:"indicator"`
	Description string `json:"description"`
}

type Component struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// operational | degraded_performance | partial_outage | major_outage
	Status string `json:"status"`
}

type incidentsResponse struct {
	Incidents []Incident `json:"incidents"`
}

type Incident struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// investigating | identified | monitoring | resolved
	Status string `json:"status"`
	// none | minor | major | critical
	Impact          string           `json:"impact"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	IncidentUpdates []IncidentUpdate `json:"incident_updates"`
}

type IncidentUpdate struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type maintenancesResponse struct {
	ScheduledMaintenances []Maintenance `json:"scheduled_maintenances"`
}

type Maintenance struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// scheduled | in_progress | completed
	Status         string    `json:"status"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	ScheduledUntil time.Time `json:"scheduled_until"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MetricPoint is one sample from the metrics feed, wired as a
// [unix_timestamp, value] pair.
type MetricPoint struct {
	Timestamp int64
	Value     float64
}

func (p *MetricPoint) UnmarshalJSON(data []byte) error {
	var pair [2]json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}

	ts, err := pair[0].Int64()
	if err != nil {
		return fmt.Errorf("invalid metric timestamp %q: %w", pair[0], err)
	}

	value, err := pair[1].Float64()
	if err != nil {
		return fmt.Errorf("invalid metric value %q: %w", pair[1], err)
	}

	p.Timestamp = ts
	p.Value = value
	return nil
}
