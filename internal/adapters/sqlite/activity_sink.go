// Package sqlite adapts the local SQLite store to application ports.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/db/queries"
)

type activitySink struct {
	db activityDatabase
}

// NewActivitySink returns an ActivitySink that writes batches to the local database.
func NewActivitySink(database activityDatabase) ports.ActivitySink {
	return &activitySink{db: database}
}

func (s *activitySink) InsertActivityEvents(ctx context.Context, events []ports.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]queries.InsertActivityEventParams, 0, len(events))
	for _, event := range events {
		payload := event.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode activity payload %s: %w", event.EventID, err)
		}
		occurredAt := event.OccurredAt.UTC()
		rows = append(rows, queries.InsertActivityEventParams{
			EventID:      event.EventID,
			ActorID:      event.ActorID,
			Kind:         string(event.Kind),
			PayloadJson:  string(raw),
			OccurredAt:   occurredAt.Format(time.RFC3339Nano),
			OccurredAtMs: occurredAt.UnixMilli(),
		})
	}
	return s.db.AppendActivityEvents(ctx, rows)
}
