package engine

import (
	"testing"
	"time"
)

var debounceBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func breach(metric, host string) BreachEvent {
	return BreachEvent{
		Key:      KeyFor(metric, host),
		Metric:   metric,
		Snapshot: testSnap(host, map[string]float64{metric: 100}),
	}
}

func TestAdmit_FirstBreach(t *testing.T) {
	d := NewDebouncer(NewAlertState(), 5*time.Minute)

	if !d.Admit(breach("cpu_percent", "h"), debounceBase) {
		t.Fatal("first breach for a key must be admitted")
	}
}

func TestAdmit_Idempotence(t *testing.T) {
	d := NewDebouncer(NewAlertState(), 5*time.Minute)
	ev := breach("cpu_percent", "h")

	if !d.Admit(ev, debounceBase) {
		t.Fatal("first Admit: want true")
	}
	// Repeated calls with the same now: only the first may succeed.
	for i := 0; i < 5; i++ {
		if d.Admit(ev, debounceBase) {
			t.Fatalf("repeat Admit %d with unchanged now: want false", i)
		}
	}
}

func TestAdmit_Liveness(t *testing.T) {
	cooldown := 5 * time.Minute
	d := NewDebouncer(NewAlertState(), cooldown)
	ev := breach("cpu_percent", "h")

	if !d.Admit(ev, debounceBase) {
		t.Fatal("first Admit: want true")
	}
	if d.Admit(ev, debounceBase.Add(cooldown-time.Second)) {
		t.Fatal("Admit inside cooldown window: want false")
	}
	if !d.Admit(ev, debounceBase.Add(cooldown)) {
		t.Fatal("Admit at exactly cooldown elapsed: want true")
	}
}

// The cooldown window is sliding, not fixed: each admission restarts it, so
// two admissions are always separated by at least the cooldown duration.
func TestAdmit_SlidingWindow(t *testing.T) {
	cooldown := 300 * time.Second
	d := NewDebouncer(NewAlertState(), cooldown)
	ev := breach("cpu_percent", "h")

	if !d.Admit(ev, debounceBase) {
		t.Fatal("t=0: want admitted")
	}
	if d.Admit(ev, debounceBase.Add(100*time.Second)) {
		t.Fatal("t=100: want suppressed")
	}
	// Suppression must not have restarted the window.
	if !d.Admit(ev, debounceBase.Add(301*time.Second)) {
		t.Fatal("t=301: want admitted again")
	}
	// The second admission did restart it.
	if d.Admit(ev, debounceBase.Add(400*time.Second)) {
		t.Fatal("t=400: want suppressed (99s after second admission)")
	}
}

func TestAdmit_ZeroCooldown(t *testing.T) {
	d := NewDebouncer(NewAlertState(), 0)
	ev := breach("cpu_percent", "h")

	for i := 0; i < 3; i++ {
		if !d.Admit(ev, debounceBase) {
			t.Fatalf("Admit %d with zero cooldown: want true", i)
		}
	}
}

func TestAdmit_KeysIndependent(t *testing.T) {
	d := NewDebouncer(NewAlertState(), 5*time.Minute)

	if !d.Admit(breach("cpu_percent", "h"), debounceBase) {
		t.Fatal("cpu_percent: want admitted")
	}
	if !d.Admit(breach("mem_percent", "h"), debounceBase) {
		t.Fatal("mem_percent: a different metric must have its own cooldown")
	}
	if !d.Admit(breach("cpu_percent", "other"), debounceBase) {
		t.Fatal("cpu_percent on another host must have its own cooldown")
	}
}

func TestAlertState_SuppressionLeavesStateUntouched(t *testing.T) {
	state := NewAlertState()
	d := NewDebouncer(state, 5*time.Minute)
	ev := breach("cpu_percent", "h")

	if !d.Admit(ev, debounceBase) {
		t.Fatal("first Admit: want true")
	}
	last, ok := state.LastNotified(ev.Key)
	if !ok || !last.Equal(debounceBase) {
		t.Fatalf("LastNotified = %v, %v; want %v, true", last, ok, debounceBase)
	}

	d.Admit(ev, debounceBase.Add(time.Minute))

	last, _ = state.LastNotified(ev.Key)
	if !last.Equal(debounceBase) {
		t.Errorf("LastNotified after suppression = %v, want unchanged %v", last, debounceBase)
	}
}

func TestAlertState_OneEntryPerKey(t *testing.T) {
	state := NewAlertState()
	d := NewDebouncer(state, 0)
	ev := breach("cpu_percent", "h")

	for i := 0; i < 10; i++ {
		d.Admit(ev, debounceBase.Add(time.Duration(i)*time.Minute))
	}
	if state.Len() != 1 {
		t.Errorf("Len = %d, want 1: entries must be overwritten, not appended", state.Len())
	}
}
