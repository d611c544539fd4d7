package metrics

import (
	"testing"
	"time"

	"github.com/hostpulse/hostpulse/internal/config"
)

func rateSnap(host string, at time.Time) *Snapshot {
	return &Snapshot{Host: host, TakenAt: at, Values: make(map[string]float64)}
}

func TestApplyNetRates_FirstSampleAbsent(t *testing.T) {
	src := newHostSource("web-1", config.SourceConfig{Type: "host"})
	snap := rateSnap("web-1", time.Now())

	src.applyNetRates(snap, 1000, 2000)

	if _, ok := snap.Value(MetricNetSentBps); ok {
		t.Error("net_sent_bps present on first sample")
	}
	if _, ok := snap.Value(MetricNetRecvBps); ok {
		t.Error("net_recv_bps present on first sample")
	}
}

func TestApplyNetRates_Delta(t *testing.T) {
	src := newHostSource("web-1", config.SourceConfig{Type: "host"})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	src.applyNetRates(rateSnap("web-1", base), 1000, 2000)

	snap := rateSnap("web-1", base.Add(10*time.Second))
	src.applyNetRates(snap, 6000, 2000)

	if v, ok := snap.Value(MetricNetSentBps); !ok || v != 500 {
		t.Errorf("net_sent_bps = %v, %v; want 500, true", v, ok)
	}
	if v, ok := snap.Value(MetricNetRecvBps); !ok || v != 0 {
		t.Errorf("net_recv_bps = %v, %v; want 0, true", v, ok)
	}
}

func TestApplyNetRates_CounterReset(t *testing.T) {
	src := newHostSource("web-1", config.SourceConfig{Type: "host"})
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	src.applyNetRates(rateSnap("web-1", base), 1_000_000, 1_000_000)

	// Counters went backwards (interface reset): report 0, not a negative rate.
	snap := rateSnap("web-1", base.Add(10*time.Second))
	src.applyNetRates(snap, 100, 100)

	if v, ok := snap.Value(MetricNetSentBps); !ok || v != 0 {
		t.Errorf("net_sent_bps after reset = %v, %v; want 0, true", v, ok)
	}
}

func TestDeltaOf(t *testing.T) {
	tests := []struct {
		current, previous, want float64
	}{
		{100, 40, 60},
		{40, 100, 0}, // reset
		{0, 0, 0},
	}
	for _, tc := range tests {
		if got := deltaOf(tc.current, tc.previous); got != tc.want {
			t.Errorf("deltaOf(%v, %v) = %v, want %v", tc.current, tc.previous, got, tc.want)
		}
	}
}

func TestSnapshotNames_Sorted(t *testing.T) {
	snap := &Snapshot{Values: map[string]float64{"z": 1, "a": 2, "m": 3}}
	names := snap.Names()
	if len(names) != 3 || names[0] != "a" || names[1] != "m" || names[2] != "z" {
		t.Errorf("Names = %v, want [a m z]", names)
	}
}
