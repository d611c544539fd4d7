package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hostpulse/hostpulse/internal/config"
	"github.com/hostpulse/hostpulse/internal/metrics"
	"github.com/hostpulse/hostpulse/internal/telemetry"
)

// Engine states reported by Status.
const (
	StateIdle    = "idle"
	StateTicking = "ticking"
	StateStopped = "stopped"
)

// Sink receives the results of each tick: the fresh snapshot and every fired
// alert. Implemented by the in-memory store.
type Sink interface {
	PutSnapshot(snap *metrics.Snapshot)
	RecordAlert(a Alert)
}

// Broadcaster pushes tick and alert events to live subscribers.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// Status is a point-in-time view of the engine loop for the API.
type Status struct {
	State    string    `json:"state"`
	Ticks    uint64    `json:"ticks"`
	LastTick time.Time `json:"last_tick,omitempty"`
}

// Engine runs the evaluation loop: once per interval it samples the metric
// source, evaluates the rule set, debounces breaches, and dispatches admitted
// events. An error in any stage is logged and never terminates the loop;
// only context cancellation stops it, at a tick boundary.
type Engine struct {
	host       string
	source     metrics.Source
	debouncer  *Debouncer
	dispatcher *Dispatcher
	interval   time.Duration

	sink   Sink        // optional
	events Broadcaster // optional

	mu       sync.RWMutex
	rules    []config.Rule
	state    string
	ticks    uint64
	lastTick time.Time
}

// New assembles an Engine. sink and events may be nil.
func New(host string, source metrics.Source, rules []config.Rule,
	debouncer *Debouncer, dispatcher *Dispatcher, interval time.Duration,
	sink Sink, events Broadcaster) *Engine {
	return &Engine{
		host:       host,
		source:     source,
		rules:      rules,
		debouncer:  debouncer,
		dispatcher: dispatcher,
		interval:   interval,
		sink:       sink,
		events:     events,
		state:      StateIdle,
	}
}

// Run executes the tick loop until ctx is cancelled. Cancellation takes
// effect at the next tick boundary; in-flight channel deliveries finish or
// time out naturally.
func (e *Engine) Run(ctx context.Context) {
	t := time.NewTicker(e.interval)
	defer t.Stop()

	slog.Info("engine: loop started", "host", e.host, "interval", e.interval,
		"cooldown", e.debouncer.Cooldown(), "rules", len(e.Rules()))

	for {
		select {
		case <-ctx.Done():
			e.setState(StateStopped)
			slog.Info("engine: loop stopped")
			return
		case now := <-t.C:
			e.Tick(ctx, now)
		}
	}
}

// Tick evaluates one snapshot. Exported so callers that own their own
// scheduling (and tests) can drive the engine directly with a controlled
// clock.
func (e *Engine) Tick(ctx context.Context, now time.Time) {
	e.setState(StateTicking)
	defer e.setState(StateIdle)

	defer func() {
		// Anything unexpected inside a tick is contained at the tick
		// boundary so the loop survives to the next interval.
		if r := recover(); r != nil {
			slog.Error("engine: tick panicked", "panic", r)
		}
	}()

	snap, err := e.source.Sample(ctx)
	if err != nil {
		telemetry.SampleErrorsTotal.Inc()
		slog.Warn("engine: sample failed, skipping tick", "err", err)
		return
	}
	if e.sink != nil {
		e.sink.PutSnapshot(snap)
	}

	events := Evaluate(snap, e.Rules())

	var admitted, suppressed int
	var fired []Alert
	for _, ev := range events {
		telemetry.BreachesTotal.WithLabelValues(ev.Metric).Inc()

		if !e.debouncer.Admit(ev, now) {
			suppressed++
			telemetry.SuppressedTotal.WithLabelValues(ev.Metric).Inc()
			slog.Debug("engine: breach suppressed by cooldown",
				"metric", ev.Metric, "value", ev.Value, "limit", ev.Limit)
			continue
		}
		admitted++

		outcomes := e.dispatcher.Dispatch(ctx, ev)
		title, body := RenderMessage(ev)
		a := Alert{
			ID:       ev.ID,
			Metric:   ev.Metric,
			Host:     snap.Host,
			Severity: ev.Severity,
			Value:    ev.Value,
			Limit:    ev.Limit,
			Title:    title,
			Body:     body,
			FiredAt:  now,
			Outcomes: outcomes,
		}
		fired = append(fired, a)

		if e.sink != nil {
			e.sink.RecordAlert(a)
		}
		if e.events != nil {
			e.events.Broadcast("alert", a)
		}
		for _, out := range outcomes {
			if !out.OK {
				slog.Error("engine: delivery failed",
					"channel", out.Channel, "metric", ev.Metric, "err", out.Error)
			}
		}
	}

	e.finishTick(now)
	telemetry.TicksTotal.Inc()

	slog.Info("engine: tick",
		"host", snap.Host,
		"values", snap.Values,
		"breaches", len(events),
		"admitted", admitted,
		"suppressed", suppressed,
	)
	if e.events != nil {
		e.events.Broadcast("tick", map[string]any{
			"host":       snap.Host,
			"taken_at":   snap.TakenAt,
			"values":     snap.Values,
			"breaches":   len(events),
			"admitted":   admitted,
			"suppressed": suppressed,
			"alerts":     fired,
		})
	}
}

// SetRules replaces the rule set. Applied on config hot reload; takes effect
// on the next tick.
func (e *Engine) SetRules(rules []config.Rule) {
	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()
	slog.Info("engine: rules updated", "rules", len(rules))
}

// Rules returns the current rule set.
func (e *Engine) Rules() []config.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules
}

// Status reports the loop state and tick progress.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{State: e.state, Ticks: e.ticks, LastTick: e.lastTick}
}

func (e *Engine) setState(s string) {
	e.mu.Lock()
	// Stopped is terminal.
	if e.state != StateStopped {
		e.state = s
	}
	e.mu.Unlock()
}

func (e *Engine) finishTick(now time.Time) {
	e.mu.Lock()
	e.ticks++
	e.lastTick = now
	e.mu.Unlock()
}
