// Package metrics provides the metric sources hostpulsed samples once per
// tick. The host source reads local CPU, memory, disk, load, and network
// counters via gopsutil; the prometheus source scrapes a Prometheus text
// endpoint and flattens it into named values. Factory: New(hostID,
// config.SourceConfig) returns the configured Source.
//
// Rate metrics (network bytes/sec) need two samples, so they are absent from
// the first snapshot. Consumers must treat missing keys as "not yet
// computable", not as zero.
//
// Authentication for HTTP sources (mTLS, API key, bearer token, basic) is
// handled by the shared authRoundTripper in client.go.
package metrics
