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

	"github.com/regionpulse/regionpulse/internal/api"
	"github.com/regionpulse/regionpulse/internal/config"
	"github.com/regionpulse/regionpulse/internal/ingest"
	"github.com/regionpulse/regionpulse/internal/obs"
	"github.com/regionpulse/regionpulse/internal/telemetry"
	"github.com/regionpulse/regionpulse/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("regionpulse-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Server.Level())

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"data_path", cfg.Server.DataPath,
		"default_threshold_ms", cfg.Server.DefaultThresholdMS,
		"stream_interval", cfg.Server.Stream.Interval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load the telemetry table before the listener starts — requests are
	// never served against a partially ingested table. A failed load leaves
	// the server running in degraded mode: every query gets the fixed error
	// body instead of a crash.
	table, dropped, err := ingest.Load(cfg.Server.DataPath)
	if err != nil {
		slog.Error("telemetry load failed — serving degraded",
			"path", cfg.Server.DataPath, "err", err)
		table = telemetry.Empty()
	} else {
		slog.Info("telemetry loaded",
			"path", cfg.Server.DataPath,
			"records", table.Len(),
			"regions", len(table.Regions()),
			"dropped_rows", dropped,
		)
	}
	obs.TableRecords.Set(float64(table.Len()))
	obs.IngestDroppedRows.Add(float64(dropped))

	// Hot-reload applies the log level only; the table and listener are fixed
	// for the process lifetime.
	go func() {
		if err := config.Watch(ctx, *configPath, func(c *config.Config) {
			level.Set(c.Server.Level())
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub — broadcasts the dataset summary to dashboard clients.
	hub := ws.New(table, cfg.Server.DefaultThresholdMS, cfg.Server.Stream.Interval)
	go hub.Run(ctx)

	httpMux := http.NewServeMux()
	httpMux.Handle("/", obs.Instrument(api.New(table, cfg.Server.DefaultThresholdMS)))
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", obs.Handler())

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
	slog.Info("regionpulse-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
