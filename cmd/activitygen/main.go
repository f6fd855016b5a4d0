// Command activitygen feeds synthetic recipe activity through an activity tracker
// into a collector, for load and end-to-end checks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fr0stylo/mise/internal/adapters/webhook"
	"github.com/fr0stylo/mise/internal/app/services"
	"github.com/fr0stylo/mise/internal/identity"
	"github.com/fr0stylo/mise/internal/lifecycle"
	"github.com/fr0stylo/mise/internal/observability"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, interval, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log := slog.New(observability.WrapSlogHandler(slog.NewTextHandler(os.Stdout, nil)))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := identity.NewBroker(nil)
	if err := broker.SignIn(cfg.Actor); err != nil {
		return err
	}

	sink := webhook.NewActivitySink(eventpublisher.Client{
		Endpoint: cfg.BaseURL,
		Token:    cfg.Token,
		Secret:   cfg.Secret,
		Source:   cfg.Source,
	})
	tracker := services.NewActivityTracker(ctx, sink, broker, lifecycle.NewSignals(), services.ActivityTrackerConfig{
		BatchSize: cfg.BatchSize,
		Logger:    log,
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		tracker.Destroy(shutdownCtx)
		stats := tracker.Stats()
		log.Info("activitygen_done", "accepted", stats.Accepted, "flushed", stats.FlushEvents, "dropped", stats.Dropped)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		emit(tracker, cfg)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func emit(tracker *services.ActivityTracker, cfg config) {
	id, name := recipe(cfg.Recipes[rand.IntN(len(cfg.Recipes))])
	switch rand.IntN(4) {
	case 0:
		tracker.LogRecipeView(id, name)
	case 1:
		tracker.LogCookStart(id, name)
	case 2:
		tracker.LogCookComplete(id, name)
	default:
		if len(cfg.Queries) == 0 {
			tracker.LogRecipeView(id, name)
			return
		}
		tracker.LogSearch(cfg.Queries[rand.IntN(len(cfg.Queries))])
	}
}
