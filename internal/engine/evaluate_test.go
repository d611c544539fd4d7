package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/hostpulse/hostpulse/internal/config"
	"github.com/hostpulse/hostpulse/internal/metrics"
)

func testSnap(host string, values map[string]float64) *metrics.Snapshot {
	return &metrics.Snapshot{
		Host:    host,
		TakenAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Values:  values,
	}
}

func TestEvaluate(t *testing.T) {
	rules := []config.Rule{
		{Metric: "cpu_percent", Limit: 85, Severity: "warning"},
		{Metric: "mem_percent", Limit: 90, Severity: "critical"},
		{Metric: "net_sent_bps", Limit: 0},
	}

	tests := []struct {
		name        string
		values      map[string]float64
		wantMetrics []string
	}{
		{
			name:        "no breaches",
			values:      map[string]float64{"cpu_percent": 50, "mem_percent": 60, "net_sent_bps": -1},
			wantMetrics: nil,
		},
		{
			name:        "one breach above limit",
			values:      map[string]float64{"cpu_percent": 90, "mem_percent": 60},
			wantMetrics: []string{"cpu_percent"},
		},
		{
			name:        "breach exactly at limit",
			values:      map[string]float64{"cpu_percent": 85},
			wantMetrics: []string{"cpu_percent"},
		},
		{
			name:        "just below limit",
			values:      map[string]float64{"cpu_percent": 84.999},
			wantMetrics: nil,
		},
		{
			name:        "absent metric never fires, even with limit 0",
			values:      map[string]float64{"cpu_percent": 10},
			wantMetrics: nil,
		},
		{
			name:        "multiple breaches in rule declaration order",
			values:      map[string]float64{"mem_percent": 95, "cpu_percent": 99, "net_sent_bps": 1},
			wantMetrics: []string{"cpu_percent", "mem_percent", "net_sent_bps"},
		},
		{
			name:        "empty snapshot",
			values:      map[string]float64{},
			wantMetrics: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			events := Evaluate(testSnap("web-1", tc.values), rules)

			if len(events) != len(tc.wantMetrics) {
				t.Fatalf("got %d events, want %d", len(events), len(tc.wantMetrics))
			}
			for i, want := range tc.wantMetrics {
				if events[i].Metric != want {
					t.Errorf("events[%d].Metric = %q, want %q", i, events[i].Metric, want)
				}
			}
		})
	}
}

func TestEvaluate_EventFields(t *testing.T) {
	snap := testSnap("db-1", map[string]float64{"disk_percent": 97.5})
	rules := []config.Rule{{Metric: "disk_percent", Limit: 95, Severity: "critical"}}

	events := Evaluate(snap, rules)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.Key != KeyFor("disk_percent", "db-1") {
		t.Errorf("Key = %q, want %q", ev.Key, KeyFor("disk_percent", "db-1"))
	}
	if ev.Value != 97.5 {
		t.Errorf("Value = %v, want 97.5", ev.Value)
	}
	if ev.Limit != 95 {
		t.Errorf("Limit = %v, want 95", ev.Limit)
	}
	if ev.Severity != "critical" {
		t.Errorf("Severity = %q, want critical", ev.Severity)
	}
	if ev.Snapshot != snap {
		t.Error("Snapshot: expected the evaluated snapshot to be carried on the event")
	}
	if ev.ID == "" {
		t.Error("ID: expected a non-empty event id")
	}
}

func TestEvaluate_DefaultSeverity(t *testing.T) {
	events := Evaluate(
		testSnap("h", map[string]float64{"cpu_percent": 100}),
		[]config.Rule{{Metric: "cpu_percent", Limit: 85}},
	)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Severity != "warning" {
		t.Errorf("Severity = %q, want warning", events[0].Severity)
	}
}

// TestEvaluate_Property checks, over randomized snapshots and rule sets, that
// an event is emitted iff the rule's metric is present and at or above its
// limit, and that emission follows rule declaration order.
func TestEvaluate_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	names := []string{"cpu_percent", "mem_percent", "disk_percent", "net_sent_bps", "net_recv_bps", "load1"}

	for iter := 0; iter < 500; iter++ {
		values := make(map[string]float64)
		for _, n := range names {
			if rng.Intn(2) == 0 {
				values[n] = rng.Float64()*200 - 50
			}
		}

		var rules []config.Rule
		for _, n := range names {
			if rng.Intn(2) == 0 {
				rules = append(rules, config.Rule{Metric: n, Limit: rng.Float64()*200 - 50})
			}
		}

		snap := testSnap("h", values)
		events := Evaluate(snap, rules)

		var want []string
		for _, r := range rules {
			if v, ok := values[r.Metric]; ok && v >= r.Limit {
				want = append(want, r.Metric)
			}
		}

		if len(events) != len(want) {
			t.Fatalf("iter %d: got %d events, want %d (values=%v rules=%v)",
				iter, len(events), len(want), values, rules)
		}
		for i := range want {
			if events[i].Metric != want[i] {
				t.Fatalf("iter %d: events[%d].Metric = %q, want %q", iter, i, events[i].Metric, want[i])
			}
		}
	}
}

func TestEvaluate_NoSideEffects(t *testing.T) {
	values := map[string]float64{"cpu_percent": 99}
	snap := testSnap("h", values)
	rules := []config.Rule{{Metric: "cpu_percent", Limit: 85}}

	first := Evaluate(snap, rules)
	second := Evaluate(snap, rules)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("got %d then %d events, want 1 and 1", len(first), len(second))
	}
	if snap.Values["cpu_percent"] != 99 {
		t.Error("snapshot mutated by Evaluate")
	}
}

func TestKeyFor(t *testing.T) {
	for _, tc := range []struct {
		metric, host string
		want         AlertKey
	}{
		{"cpu_percent", "web-1", "cpu_percent:web-1"},
		{"mem_percent", "db-2", "mem_percent:db-2"},
	} {
		if got := KeyFor(tc.metric, tc.host); got != tc.want {
			t.Errorf("KeyFor(%q, %q) = %q, want %q", tc.metric, tc.host, got, tc.want)
		}
	}

	// Same condition on different hosts must not share cooldown state.
	if KeyFor("cpu_percent", "a") == KeyFor("cpu_percent", "b") {
		t.Error("keys for different hosts collide")
	}
}
