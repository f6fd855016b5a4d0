package eventpublisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	ceevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"
)

const (
	// ContentTypeBatch is the structured-mode batch media type.
	ContentTypeBatch = "application/cloudevents-batch+json"
	// ExtensionActorID carries the actor the event is attributed to.
	ExtensionActorID = "actorid"

	defaultSource = "mise/app"
)

// ErrEmptyBatch indicates a publish without events.
var ErrEmptyBatch = errors.New("eventpublisher: empty batch")

// BuildCloudEvent converts one activity event into a CloudEvent.
func BuildCloudEvent(source string, event Event) (ceevent.Event, error) {
	kind := normalizeKind(event.Kind)
	if !isKnownKind(kind) {
		return ceevent.Event{}, fmt.Errorf("unsupported activity kind %q", event.Kind)
	}
	actorID := strings.TrimSpace(event.ActorID)
	if actorID == "" {
		return ceevent.Event{}, fmt.Errorf("actor is required for activity %s", kind)
	}

	source = strings.TrimSpace(source)
	if source == "" {
		source = defaultSource
	}
	id := strings.TrimSpace(event.ID)
	if id == "" {
		id = uuid.NewString()
	}
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	payload := event.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	ce := ceevent.New()
	ce.SetID(id)
	ce.SetSource(source)
	ce.SetType(EventType(kind))
	ce.SetTime(occurredAt.UTC())
	if err := ce.Context.SetExtension(ExtensionActorID, actorID); err != nil {
		return ceevent.Event{}, err
	}
	if err := ce.SetData(ceevent.ApplicationJSON, payload); err != nil {
		return ceevent.Event{}, fmt.Errorf("encode activity data: %w", err)
	}
	if err := ce.Validate(); err != nil {
		return ceevent.Event{}, err
	}
	return ce, nil
}

// BuildBatchBody encodes events as a structured CloudEvents batch, preserving order.
func BuildBatchBody(source string, events []Event) ([]byte, error) {
	if len(events) == 0 {
		return nil, ErrEmptyBatch
	}
	batch := make([]ceevent.Event, 0, len(events))
	for _, event := range events {
		ce, err := BuildCloudEvent(source, event)
		if err != nil {
			return nil, err
		}
		batch = append(batch, ce)
	}
	return json.Marshal(batch)
}
