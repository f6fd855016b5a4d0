// Command activityreplay republishes activity stored in the local database to a
// remote collector, in stored order. The collector skips event ids it already has.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fr0stylo/mise/internal/config"
	"github.com/fr0stylo/mise/internal/db"
	"github.com/fr0stylo/mise/internal/db/queries"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.LoadForTool()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dbPath := flag.String("db", cfg.Database.Path, "database path without .sqlite suffix")
	actor := flag.String("actor", "", "actor whose activity is replayed")
	limit := flag.Int64("limit", 1000, "maximum number of events to replay")
	batchSize := flag.Int("batch", cfg.Activity.BatchSize, "events per request")
	endpoint := flag.String("endpoint", cfg.Sink.Endpoint, "collector base URL")
	token := flag.String("token", cfg.Sink.Token, "collector bearer token")
	secret := flag.String("secret", cfg.Sink.Secret, "collector signing secret")
	source := flag.String("source", "mise/replay", "CloudEvents source for replayed events")
	dryRun := flag.Bool("dry-run", false, "build and validate batches without sending them")
	flag.Parse()

	if strings.TrimSpace(*actor) == "" {
		log.Fatalf("-actor is required")
	}

	database, err := db.New(strings.TrimSpace(*dbPath))
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() { _ = database.Close() }()

	rows, err := database.ListActivityEventsByActor(ctx, strings.TrimSpace(*actor), *limit)
	if err != nil {
		log.Fatalf("list activity: %v", err)
	}

	events := make([]eventpublisher.Event, 0, len(rows))
	for _, row := range rows {
		event, err := toEvent(row)
		if err != nil {
			log.Printf("skip event id=%s: %v", row.EventID, err)
			continue
		}
		events = append(events, event)
	}

	client := eventpublisher.Client{
		Endpoint: *endpoint,
		Token:    *token,
		Secret:   *secret,
		Source:   *source,
		Timeout:  cfg.SinkTimeout(),
	}
	sent := 0
	for _, batch := range chunk(events, *batchSize) {
		if *dryRun {
			if _, err := eventpublisher.BuildBatchBody(*source, batch); err != nil {
				log.Fatalf("build batch at offset %d: %v", sent, err)
			}
		} else if err := client.PublishBatch(ctx, batch); err != nil {
			log.Fatalf("publish batch at offset %d: %v", sent, err)
		}
		sent += len(batch)
	}

	mode := "published"
	if *dryRun {
		mode = "validated"
	}
	fmt.Printf("%s %d of %d stored events for %s\n", mode, sent, len(rows), *actor)
}

func toEvent(row queries.ActivityEvent) (eventpublisher.Event, error) {
	payload := map[string]any{}
	if strings.TrimSpace(row.PayloadJson) != "" {
		if err := json.Unmarshal([]byte(row.PayloadJson), &payload); err != nil {
			return eventpublisher.Event{}, fmt.Errorf("decode payload: %w", err)
		}
	}
	return eventpublisher.Event{
		ID:         row.EventID,
		Kind:       row.Kind,
		ActorID:    row.ActorID,
		Payload:    payload,
		OccurredAt: occurredAt(row),
	}, nil
}

// occurredAt prefers the full-precision text column; the millisecond column
// only exists for ordering.
func occurredAt(row queries.ActivityEvent) time.Time {
	if parsed, err := time.Parse(time.RFC3339Nano, row.OccurredAt); err == nil {
		return parsed.UTC()
	}
	return time.UnixMilli(row.OccurredAtMs).UTC()
}

func chunk(events []eventpublisher.Event, size int) [][]eventpublisher.Event {
	if size <= 0 {
		size = 10
	}
	out := make([][]eventpublisher.Event, 0, (len(events)+size-1)/size)
	for start := 0; start < len(events); start += size {
		out = append(out, events[start:min(start+size, len(events))])
	}
	return out
}
