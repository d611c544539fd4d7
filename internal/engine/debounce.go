package engine

import (
	"sync"
	"time"
)

// AlertState holds the last-notified timestamp per alert key. It lives for
// the process lifetime only; cooldown state deliberately resets to empty on
// restart. One entry per key, overwritten on each admission.
//
// AlertState is safe for concurrent use.
type AlertState struct {
	mu   sync.Mutex
	last map[AlertKey]time.Time
}

// NewAlertState returns an empty store.
func NewAlertState() *AlertState {
	return &AlertState{last: make(map[AlertKey]time.Time)}
}

// Admit is the store's single query-and-update operation: if key has never
// been notified, or at least cooldown has elapsed since the last notification,
// it records now as the new last-notified time and returns true. Otherwise it
// returns false and leaves the entry untouched. The check and the update
// happen under one lock so concurrent callers for the same key serialize.
func (s *AlertState) Admit(key AlertKey, now time.Time, cooldown time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastAt, ok := s.last[key]
	if ok && now.Sub(lastAt) < cooldown {
		return false
	}
	s.last[key] = now
	return true
}

// LastNotified returns the last-notified time for key, if any.
func (s *AlertState) LastNotified(key AlertKey) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[key]
	return t, ok
}

// Len returns the number of tracked keys.
func (s *AlertState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}

// Debouncer filters breach events down to the ones allowed to notify now,
// using a sliding per-key cooldown: two admissions for the same key are
// always separated by at least the cooldown duration. A zero cooldown admits
// every breach.
//
// The state store is injected so a future multi-instance deployment can
// substitute a shared store without changing this contract.
type Debouncer struct {
	state    *AlertState
	cooldown time.Duration
}

// NewDebouncer returns a Debouncer over state with the given cooldown.
func NewDebouncer(state *AlertState, cooldown time.Duration) *Debouncer {
	return &Debouncer{state: state, cooldown: cooldown}
}

// Admit reports whether ev may notify at now, updating the state store on
// admission. Suppression never mutates state, and downstream delivery
// failures never roll the recorded time back: the semantics are at most one
// attempt per cooldown window, not at least one delivery.
func (d *Debouncer) Admit(ev BreachEvent, now time.Time) bool {
	return d.state.Admit(ev.Key, now, d.cooldown)
}

// Cooldown returns the configured cooldown duration.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}
