package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts completed evaluation ticks.
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpulse_ticks_total",
			Help: "Total number of completed evaluation ticks",
		},
	)

	// BreachesTotal counts threshold breaches by metric.
	BreachesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpulse_breaches_total",
			Help: "Total number of threshold rule breaches",
		},
		[]string{"metric"},
	)

	// SuppressedTotal counts breaches suppressed by the cooldown debouncer.
	SuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpulse_suppressed_total",
			Help: "Total number of breaches suppressed by cooldown",
		},
		[]string{"metric"},
	)

	// DeliveriesTotal counts channel delivery attempts by channel and status.
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpulse_deliveries_total",
			Help: "Total number of alert delivery attempts",
		},
		[]string{"channel", "status"}, // status: ok, failed, dry_run
	)

	// SampleErrorsTotal counts metric source sample failures.
	SampleErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpulse_sample_errors_total",
			Help: "Total number of metric source sample failures",
		},
	)

	// DeliveryDuration observes per-channel delivery latency in seconds.
	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostpulse_delivery_duration_seconds",
			Help:    "Alert delivery latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)
)
