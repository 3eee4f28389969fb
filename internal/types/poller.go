package types

// PollerType identifies one of the independent poll tasks.
type PollerType string

const (
	PollStatus      PollerType = "status"
	PollIncident    PollerType = "incident"
	PollMaintenance PollerType = "maintenance"
	PollMetrics     PollerType = "metrics"
)

func AllPollers() []PollerType {
	return []PollerType{PollStatus, PollIncident, PollMaintenance, PollMetrics}
}

func ParsePoller(s string) (PollerType, bool) {
	switch PollerType(s) {
	case PollStatus, PollIncident, PollMaintenance, PollMetrics:
		return PollerType(s), true
	}
	return "", false
}
