// Package engine implements the threshold evaluation and alert dispatch
// core. Evaluate turns a snapshot plus the rule set into breach events; the
// debouncer suppresses repeats per (metric, host) with a sliding cooldown
// backed by an injected AlertState store; the dispatcher fans admitted events
// out to all notification channels concurrently with per-channel timeouts
// and failure isolation. Engine ties the stages together once per tick.
//
// Cooldown state is in-memory only and resets on restart. Once the debouncer
// admits an event the cooldown window starts regardless of whether any
// delivery succeeds.
package engine
