package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/hostpulse/hostpulse/internal/config"
	"github.com/hostpulse/hostpulse/internal/metrics"
)

// AlertKey identifies one condition (metric on host) across ticks,
// independent of the metric's current value.
type AlertKey string

// KeyFor derives the AlertKey for a metric on a host.
func KeyFor(metric, host string) AlertKey {
	return AlertKey(metric + ":" + host)
}

// BreachEvent is one threshold violation observed in a single tick. It is
// produced by Evaluate and consumed by the debouncer and dispatcher within
// the same tick.
type BreachEvent struct {
	ID       string
	Key      AlertKey
	Metric   string
	Value    float64
	Limit    float64
	Severity string

	// Snapshot is the full snapshot the breach was observed in, carried for
	// operator context in rendered messages.
	Snapshot *metrics.Snapshot
}

// Evaluate tests every rule against snap and returns one BreachEvent per rule
// whose metric is present and at or above its limit. Rules whose metric is
// absent from the snapshot are skipped silently: a rate metric before its
// second sample is not an error. Events are emitted in rule declaration
// order. Evaluate has no side effects.
func Evaluate(snap *metrics.Snapshot, rules []config.Rule) []BreachEvent {
	var events []BreachEvent
	for _, rule := range rules {
		value, ok := snap.Value(rule.Metric)
		if !ok {
			continue
		}
		if value < rule.Limit {
			continue
		}
		sev := rule.Severity
		if sev == "" {
			sev = "warning"
		}
		events = append(events, BreachEvent{
			ID:       uuid.NewString(),
			Key:      KeyFor(rule.Metric, snap.Host),
			Metric:   rule.Metric,
			Value:    value,
			Limit:    rule.Limit,
			Severity: sev,
			Snapshot: snap,
		})
	}
	return events
}

// Alert is the record of one admitted breach and its delivery outcomes, kept
// in memory for the API and WebSocket feed.
type Alert struct {
	ID       string            `json:"id"`
	Metric   string            `json:"metric"`
	Host     string            `json:"host"`
	Severity string            `json:"severity"`
	Value    float64           `json:"value"`
	Limit    float64           `json:"limit"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	FiredAt  time.Time         `json:"fired_at"`
	Outcomes []DeliveryOutcome `json:"outcomes"`
}
