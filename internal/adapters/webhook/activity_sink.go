// Package webhook forwards activity batches to a remote collector.
package webhook

import (
	"context"

	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

type batchPublisher interface {
	PublishBatch(ctx context.Context, events []eventpublisher.Event) error
}

type activitySink struct {
	publisher batchPublisher
}

// NewActivitySink returns an ActivitySink that posts each batch as one CloudEvents request.
func NewActivitySink(publisher batchPublisher) ports.ActivitySink {
	return &activitySink{publisher: publisher}
}

func (s *activitySink) InsertActivityEvents(ctx context.Context, events []ports.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}
	batch := make([]eventpublisher.Event, 0, len(events))
	for _, event := range events {
		batch = append(batch, eventpublisher.Event{
			ID:         event.EventID,
			Kind:       string(event.Kind),
			ActorID:    event.ActorID,
			Payload:    event.Payload,
			OccurredAt: event.OccurredAt,
		})
	}
	return s.publisher.PublishBatch(ctx, batch)
}
