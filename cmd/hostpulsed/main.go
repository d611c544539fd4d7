package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hostpulse/hostpulse/internal/api"
	"github.com/hostpulse/hostpulse/internal/config"
	"github.com/hostpulse/hostpulse/internal/engine"
	"github.com/hostpulse/hostpulse/internal/metrics"
	"github.com/hostpulse/hostpulse/internal/notify"
	"github.com/hostpulse/hostpulse/internal/store"
	"github.com/hostpulse/hostpulse/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("hostpulsed starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	hostID := cfg.Monitor.HostID
	if hostID == "" {
		hostID, err = os.Hostname()
		if err != nil {
			slog.Error("failed to resolve hostname", "err", err)
			os.Exit(1)
		}
	}

	slog.Info("config loaded",
		"host", hostID,
		"source", cfg.Monitor.Source.Type,
		"interval", cfg.Monitor.Interval,
		"cooldown", cfg.Monitor.Cooldown,
		"rules", len(cfg.Monitor.Rules),
		"channels", len(cfg.Channels),
		"dry_run", cfg.Monitor.DryRun,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := metrics.New(hostID, cfg.Monitor.Source)
	if err != nil {
		slog.Error("failed to build metric source", "err", err)
		os.Exit(1)
	}

	channels, err := notify.Build(cfg.Channels)
	if err != nil {
		slog.Error("failed to build notification channels", "err", err)
		os.Exit(1)
	}
	if len(channels) == 0 && !cfg.Monitor.DryRun {
		slog.Warn("no channels configured, breaches will be logged only")
	}

	// Latest snapshot + recent alerts, read by the API and used for staleness
	// checks. Stale after two missed ticks.
	st := store.New(2 * cfg.Monitor.Interval)

	// WebSocket hub. The engine pushes tick and alert events into it.
	hub := ws.New()
	go hub.Run(ctx)

	eng := engine.New(
		hostID,
		source,
		cfg.Monitor.Rules,
		engine.NewDebouncer(engine.NewAlertState(), cfg.Monitor.Cooldown),
		engine.NewDispatcher(channels, cfg.Monitor.DispatchTimeout, cfg.Monitor.DryRun),
		cfg.Monitor.Interval,
		st,
		hub,
	)
	go eng.Run(ctx)

	// Watch config file for hot-reload. Only the rule set is applied live;
	// source, channel, and server changes require a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			eng.SetRules(updated.Monitor.Rules)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// HTTP server: REST API + WebSocket hub + Prometheus telemetry.
	authWrap := func(h http.Handler) http.Handler {
		return api.APIKeyMiddleware(
			cfg.Server.Auth.Mode,
			cfg.Server.Auth.EffectiveHeader(),
			cfg.Server.Auth.Key(),
			h,
		)
	}
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", authWrap(api.New(st, eng)))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("hostpulsed shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
