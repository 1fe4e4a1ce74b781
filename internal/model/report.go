package model

import "time"

// MetricCard is one classified metric ready for rendering: the raw
// classification plus the static presentation content for its status.
type MetricCard struct {
	Key         MetricKey `json:"key"`
	Title       string    `json:"title"`
	Status      Status    `json:"status"`
	Severity    Severity  `json:"severity"`
	Score       *float64  `json:"score,omitempty"` // normalized 0-100 when the backend supplied one
	Description string    `json:"description"`
	Remediation []string  `json:"remediation"`
}

// HealthReport is the full GBP health report for one business.
type HealthReport struct {
	PlaceID     string              `json:"place_id"`
	Cards       []MetricCard        `json:"cards"`
	ActionItems []ActionItem        `json:"action_items"`
	Top3        *Top3InRadiusResult `json:"top3,omitempty"`
	Top3Message string              `json:"top3_message,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
}
