// Package ws implements the WebSocket hub that streams tick summaries and
// fired alerts to connected clients. Broadcasts are push-based from the
// engine; slow clients are dropped rather than allowed to block a broadcast.
package ws
