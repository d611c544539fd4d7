package api

import "github.com/hostpulse/hostpulse/internal/engine"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	State      string `json:"state"` // idle | ticking | stopped
	Ticks      uint64 `json:"ticks"`
	LastTick   string `json:"last_tick,omitempty"` // RFC3339
	SnapshotOK bool   `json:"snapshot_ok"`
	AlertCount int    `json:"alert_count"`
	RuleCount  int    `json:"rule_count"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot.
type SnapshotResponse struct {
	Host      string             `json:"host"`
	TakenAt   string             `json:"taken_at"` // RFC3339
	UpdatedAt string             `json:"updated_at"`
	Values    map[string]float64 `json:"values"`
}

// RuleResponse is one rule entry in GET /api/v1/rules.
type RuleResponse struct {
	Metric   string  `json:"metric"`
	Limit    float64 `json:"limit"`
	Severity string  `json:"severity"`
}

// AlertsResponse is the payload for GET /api/v1/alerts.
type AlertsResponse struct {
	Alerts []engine.Alert `json:"alerts"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
