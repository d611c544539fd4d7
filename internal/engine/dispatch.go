package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hostpulse/hostpulse/internal/notify"
	"github.com/hostpulse/hostpulse/internal/telemetry"
)

// DeliveryOutcome records one channel's delivery attempt for an admitted
// event. Outcomes are for logging and observability only; they never change
// control flow.
type DeliveryOutcome struct {
	Channel  string        `json:"channel"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	// Message holds the rendered message in dry-run mode, for inspection
	// without side effects.
	Message string `json:"message,omitempty"`
}

// Dispatcher fans an admitted event out to all configured channels. Channels
// are attempted concurrently, each bounded by its own timeout; one channel's
// failure, timeout, or panic is recorded and never prevents the others.
type Dispatcher struct {
	channels []notify.Channel
	timeout  time.Duration
	dryRun   bool
}

// NewDispatcher returns a Dispatcher over channels. Each delivery call is
// bounded by timeout. When dryRun is set, adapters are never invoked and
// every outcome reports success carrying the rendered message.
func NewDispatcher(channels []notify.Channel, timeout time.Duration, dryRun bool) *Dispatcher {
	return &Dispatcher{channels: channels, timeout: timeout, dryRun: dryRun}
}

// Dispatch renders ev once and attempts delivery to every channel. It joins
// on all attempts and returns one outcome per channel, in channel
// configuration order.
func (d *Dispatcher) Dispatch(ctx context.Context, ev BreachEvent) []DeliveryOutcome {
	title, body := RenderMessage(ev)

	if d.dryRun {
		outcomes := make([]DeliveryOutcome, len(d.channels))
		for i, ch := range d.channels {
			outcomes[i] = DeliveryOutcome{
				Channel: ch.Name(),
				OK:      true,
				Message: title + "\n\n" + body,
			}
			telemetry.DeliveriesTotal.WithLabelValues(ch.Name(), "dry_run").Inc()
		}
		return outcomes
	}

	outcomes := make([]DeliveryOutcome, len(d.channels))
	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)
		go func(i int, ch notify.Channel) {
			defer wg.Done()
			outcomes[i] = d.deliverOne(ctx, ch, title, body)
		}(i, ch)
	}
	wg.Wait()
	return outcomes
}

// deliverOne runs a single channel delivery with its own timeout, converting
// errors and panics into a failed outcome.
func (d *Dispatcher) deliverOne(ctx context.Context, ch notify.Channel, title, body string) (out DeliveryOutcome) {
	out.Channel = ch.Name()
	start := time.Now()

	defer func() {
		out.Duration = time.Since(start)
		telemetry.DeliveryDuration.WithLabelValues(ch.Name()).Observe(out.Duration.Seconds())
		if r := recover(); r != nil {
			out.OK = false
			out.Error = fmt.Sprintf("panic: %v", r)
			slog.Error("dispatch: channel panicked", "channel", ch.Name(), "panic", r)
		}
		status := "ok"
		if !out.OK {
			status = "failed"
		}
		telemetry.DeliveriesTotal.WithLabelValues(ch.Name(), status).Inc()
	}()

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := ch.Deliver(callCtx, title, body); err != nil {
		out.OK = false
		out.Error = err.Error()
		return out
	}
	out.OK = true
	return out
}

// RenderMessage builds the human-readable title and body for ev. The title
// carries severity, metric, host, and the observed-vs-limit values; the body
// repeats the breach detail and appends every reading in the snapshot, sorted
// by name, for operator context.
func RenderMessage(ev BreachEvent) (title, body string) {
	title = fmt.Sprintf("[%s] %s on %s: %.2f >= %.2f",
		strings.ToUpper(ev.Severity), ev.Metric, ev.Snapshot.Host, ev.Value, ev.Limit)

	var b strings.Builder
	fmt.Fprintf(&b, "%s breached its limit on %s at %s\n",
		ev.Metric, ev.Snapshot.Host, ev.Snapshot.TakenAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "observed %.2f, limit %.2f\n\ncurrent readings:\n", ev.Value, ev.Limit)
	for _, name := range ev.Snapshot.Names() {
		fmt.Fprintf(&b, "  %s = %.2f\n", name, ev.Snapshot.Values[name])
	}
	return title, b.String()
}
