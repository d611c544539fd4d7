// Package telemetry defines hostpulse's own Prometheus instrumentation.
// Collectors are registered at init via promauto and served by promhttp on
// the HTTP port.
package telemetry
