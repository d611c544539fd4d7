// Package store holds the monitor's in-memory state for read-side consumers:
// the latest metric snapshot (with a staleness TTL) and a bounded ring of
// recently fired alerts. It implements engine.Sink.
package store
