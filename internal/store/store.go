package store

import (
	"sync"
	"time"

	"github.com/hostpulse/hostpulse/internal/engine"
	"github.com/hostpulse/hostpulse/internal/metrics"
)

// maxAlerts bounds the in-memory recent-alert ring.
const maxAlerts = 200

// Store is a thread-safe in-memory view of the monitor: the most recent
// snapshot plus a bounded ring of recently fired alerts. It implements
// engine.Sink and feeds the REST API and WebSocket hub. Nothing is persisted.
type Store struct {
	mu        sync.RWMutex
	ttl       time.Duration
	snap      *metrics.Snapshot
	updatedAt time.Time
	alerts    []engine.Alert   // newest last
	now       func() time.Time // injectable for deterministic tests
}

// New creates a Store. A snapshot older than ttl is treated as absent.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl: ttl,
		now: time.Now,
	}
}

// PutSnapshot stores the latest snapshot. Callers must not modify snap after
// calling PutSnapshot.
func (s *Store) PutSnapshot(snap *metrics.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.updatedAt = s.now()
}

// Snapshot returns the current snapshot and its receipt time. ok is false
// when no snapshot has been stored yet or the stored one is older than TTL.
func (s *Store) Snapshot() (snap *metrics.Snapshot, updatedAt time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, time.Time{}, false
	}
	if s.ttl > 0 && s.now().Sub(s.updatedAt) > s.ttl {
		return nil, time.Time{}, false
	}
	return s.snap, s.updatedAt, true
}

// RecordAlert appends a fired alert, evicting the oldest entries beyond the
// ring capacity.
func (s *Store) RecordAlert(a engine.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	if len(s.alerts) > maxAlerts {
		s.alerts = s.alerts[len(s.alerts)-maxAlerts:]
	}
}

// Alerts returns up to limit recent alerts, newest first. limit <= 0 returns
// all retained alerts.
func (s *Store) Alerts(limit int) []engine.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.alerts)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]engine.Alert, 0, n)
	for i := len(s.alerts) - 1; i >= len(s.alerts)-n; i-- {
		out = append(out, s.alerts[i])
	}
	return out
}

// AlertCount returns the number of retained alerts.
func (s *Store) AlertCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// TTL returns the configured snapshot staleness threshold.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
