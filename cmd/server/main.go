package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/mise/internal/adapters/sqlite"
	"github.com/fr0stylo/mise/internal/adapters/webhook"
	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/app/services"
	"github.com/fr0stylo/mise/internal/config"
	"github.com/fr0stylo/mise/internal/db"
	"github.com/fr0stylo/mise/internal/identity"
	"github.com/fr0stylo/mise/internal/lifecycle"
	"github.com/fr0stylo/mise/internal/observability"
	"github.com/fr0stylo/mise/internal/server"
	"github.com/fr0stylo/mise/internal/server/routes"
	activitywebhook "github.com/fr0stylo/mise/internal/webhooks/activity"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

const shutdownTimeout = 5 * time.Second

func Run() error {
	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	log := slog.New(observability.WrapSlogHandler(baseHandler))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.IsLocalDevelopment() && cfg.Auth.JWTSecret == "mise-local-dev" {
		slog.Warn("MISE_AUTH_JWT_SECRET not set, using local development fallback")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.SetupOpenTelemetry(ctx, log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	if cfg.Database.LogTiming {
		go logDBLatencyStats(ctx, log, database)
	}
	if retention := cfg.ActivityRetention(); retention > 0 {
		go pruneActivityEvents(ctx, log, database, retention)
	}

	verifier, err := identity.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	if err != nil {
		slog.Warn("Token sign-in disabled", "error", err)
		verifier = nil
	}
	broker := identity.NewBroker(verifier)

	signals := lifecycle.NewSignals()
	if cfg.Activity.WatchProcessLifecycle {
		signals.WatchProcess(ctx, syscall.SIGHUP)
	}

	tracker := services.NewActivityTracker(ctx, activitySink(cfg, database), broker, signals, services.ActivityTrackerConfig{
		BatchSize:            cfg.Activity.BatchSize,
		FlushInterval:        cfg.ActivityFlushInterval(),
		RequeueCeilingFactor: cfg.Activity.RequeueCeilingFactor,
		StatsInterval:        cfg.ActivityStatsInterval(),
		Logger:               log,
		Metrics:              observability.NewActivityMetrics(),
	})

	srv := server.New(log)
	srv.RegisterRouter(routes.NewAPIRoutes(tracker, broker, signals))
	srv.RegisterRouter(routes.NewHealthRoutes(tracker, database))
	srv.RegisterRouter(routes.NewHistoryRoutes(database, broker))
	if cfg.Collector.Enabled() {
		collector := activitywebhook.NewHandler(cfg.Collector.Token, cfg.Collector.Secret, sqlite.NewActivitySink(database), log)
		collector.SetRateLimit(cfg.Collector.RateLimit, cfg.Collector.Burst)
		srv.RegisterRouter(routes.NewWebhookRoutes(collector))
		slog.Info("Activity collector enabled", "path", eventpublisher.WebhookPath)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "sink", cfg.Sink.Kind)
		serveErr <- srv.Start(addr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shutdown server", "error", err)
	}
	tracker.Destroy(shutdownCtx)
	return runErr
}

func activitySink(cfg config.Config, database *db.Database) ports.ActivitySink {
	if cfg.Sink.Kind == config.SinkWebhook {
		return webhook.NewActivitySink(eventpublisher.Client{
			Endpoint: cfg.Sink.Endpoint,
			Token:    cfg.Sink.Token,
			Secret:   cfg.Sink.Secret,
			Source:   cfg.Sink.Source,
			Timeout:  cfg.SinkTimeout(),
		})
	}
	return sqlite.NewActivitySink(database)
}

func main() {
	if err := Run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func pruneActivityEvents(ctx context.Context, log *slog.Logger, database *db.Database, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		cutoff := time.Now().Add(-retention).UnixMilli()
		removed, err := database.DeleteActivityEventsBefore(ctx, cutoff)
		if err != nil {
			log.WarnContext(ctx, "activity_prune_failed", "error", err)
		} else if removed > 0 {
			log.InfoContext(ctx, "activity_pruned", "removed", removed, "retention_days", int(retention.Hours()/24))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func logDBLatencyStats(ctx context.Context, log *slog.Logger, database *db.Database) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats := database.QueryLatencyStats()
		if len(stats) == 0 {
			continue
		}
		limit := 5
		if len(stats) < limit {
			limit = len(stats)
		}
		for index := 0; index < limit; index++ {
			entry := stats[index]
			log.Info("db_query_latency",
				"query", entry.Name,
				"count", entry.Count,
				"rows", entry.Rows,
				"avg_rows", entry.AvgRows(),
				"p50_ms", entry.P50.Milliseconds(),
				"p95_ms", entry.P95.Milliseconds(),
				"max_ms", entry.Max.Milliseconds(),
			)
		}
	}
}
