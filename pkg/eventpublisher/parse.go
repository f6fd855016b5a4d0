package eventpublisher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	ceevent "github.com/cloudevents/sdk-go/v2/event"
	cetypes "github.com/cloudevents/sdk-go/v2/types"
)

// ErrUnsupportedEvent indicates a CloudEvent that is not an activity event.
var ErrUnsupportedEvent = errors.New("eventpublisher: unsupported event")

// ParseBatchBody decodes a structured CloudEvents batch back into activity events.
// A single structured event is accepted as a batch of one.
func ParseBatchBody(body []byte) ([]Event, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrEmptyBatch
	}

	var batch []ceevent.Event
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, fmt.Errorf("decode cloudevents batch: %w", err)
		}
	} else {
		var single ceevent.Event
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("decode cloudevent: %w", err)
		}
		batch = append(batch, single)
	}
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	events := make([]Event, 0, len(batch))
	for _, ce := range batch {
		event, err := ParseCloudEvent(ce)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// ParseCloudEvent converts one CloudEvent into an activity event.
func ParseCloudEvent(ce ceevent.Event) (Event, error) {
	if err := ce.Validate(); err != nil {
		return Event{}, err
	}
	if !strings.HasPrefix(ce.Type(), typePrefix) {
		return Event{}, fmt.Errorf("%w: type %q", ErrUnsupportedEvent, ce.Type())
	}
	kind := normalizeKind(ce.Type())
	if !isKnownKind(kind) {
		return Event{}, fmt.Errorf("%w: type %q", ErrUnsupportedEvent, ce.Type())
	}

	rawActor, ok := ce.Extensions()[ExtensionActorID]
	if !ok {
		return Event{}, fmt.Errorf("%w: event %s has no %s", ErrUnsupportedEvent, ce.ID(), ExtensionActorID)
	}
	actorID, err := cetypes.ToString(rawActor)
	if err != nil {
		return Event{}, fmt.Errorf("%w: event %s: %v", ErrUnsupportedEvent, ce.ID(), err)
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return Event{}, fmt.Errorf("%w: event %s has an empty actor", ErrUnsupportedEvent, ce.ID())
	}

	payload := map[string]any{}
	if len(ce.Data()) > 0 {
		if err := ce.DataAs(&payload); err != nil {
			return Event{}, fmt.Errorf("decode data of event %s: %w", ce.ID(), err)
		}
	}

	return Event{
		ID:         ce.ID(),
		Kind:       kind,
		ActorID:    actorID,
		Payload:    payload,
		OccurredAt: ce.Time().UTC(),
	}, nil
}
