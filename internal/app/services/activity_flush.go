package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fr0stylo/mise/internal/app/domain"
	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/observability"
)

var errNoActivitySink = errors.New("activity sink not configured")

const (
	dropReasonCeiling         = "ceiling"
	dropReasonIdentityChanged = "identity_changed"
)

// takeBatchLocked snapshots and clears the queue. It returns nil when nothing
// is queued or nobody is signed in. Callers hold t.mu.
func (t *ActivityTracker) takeBatchLocked() ([]domain.ActivityRecord, string) {
	actorID, ok := t.identity.current()
	if !ok || t.queue.len() == 0 {
		return nil, ""
	}
	return t.queue.drain(), actorID
}

// flushDetached takes the current batch and submits it on its own goroutine.
func (t *ActivityTracker) flushDetached(trigger string) {
	t.mu.Lock()
	batch, actorID := t.takeBatchLocked()
	if batch != nil {
		t.inflight.Add(1)
	}
	t.mu.Unlock()

	if batch != nil {
		go t.submitDetached(batch, actorID, trigger)
	}
}

func (t *ActivityTracker) submitDetached(batch []domain.ActivityRecord, actorID, trigger string) {
	defer t.inflight.Done()
	t.submit(t.baseCtx, batch, actorID, trigger)
}

func (t *ActivityTracker) submit(ctx context.Context, batch []domain.ActivityRecord, actorID, trigger string) {
	events := annotateActivity(batch, actorID)

	ctx = observability.WithActor(ctx, actorID)
	ctx, span := observability.StartSinkSpan(ctx, trigger, len(events))
	err := t.insert(ctx, events)
	span.RecordError(err)
	span.End()

	if err == nil {
		t.flushBatches.Add(1)
		t.flushEvents.Add(int64(len(events)))
		t.metrics.Flushed(ctx, len(events))
		t.log.DebugContext(ctx, "activity_batch_flushed", "batch_size", len(events))
		return
	}

	t.flushErrors.Add(1)
	t.metrics.Failed(ctx, len(events))
	t.log.WarnContext(ctx, "activity_flush_failed", "error", err, "batch_size", len(events))
	t.restore(ctx, batch, actorID)
}

func (t *ActivityTracker) insert(ctx context.Context, events []ports.ActivityEvent) (err error) {
	if t.sink == nil {
		return errNoActivitySink
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("activity sink panic: %v", r)
		}
	}()
	return t.sink.InsertActivityEvents(ctx, events)
}

// restore reinstates a failed batch at the head of the queue, unless the actor
// it belongs to is gone or the queue would grow past its ceiling.
func (t *ActivityTracker) restore(ctx context.Context, batch []domain.ActivityRecord, actorID string) {
	t.mu.Lock()
	reason := ""
	// A batch stays with the actor it was drained under; never hand it to whoever signed in since.
	if current, _ := t.identity.current(); current != actorID {
		reason = dropReasonIdentityChanged
	} else if !t.queue.requeue(batch) {
		reason = dropReasonCeiling
	}
	queued := t.queue.len()
	t.mu.Unlock()

	if reason == "" {
		t.requeued.Add(int64(len(batch)))
		t.metrics.Requeued(ctx, len(batch))
		return
	}

	t.dropped.Add(int64(len(batch)))
	t.metrics.Dropped(ctx, len(batch), reason)
	t.log.WarnContext(ctx, "activity_batch_dropped", "reason", reason, "batch_size", len(batch), "queued", queued)
}

func annotateActivity(batch []domain.ActivityRecord, actorID string) []ports.ActivityEvent {
	events := make([]ports.ActivityEvent, 0, len(batch))
	for _, record := range batch {
		events = append(events, ports.ActivityEvent{
			EventID:    record.ID(),
			ActorID:    actorID,
			Kind:       record.Kind(),
			Payload:    record.Payload(),
			OccurredAt: record.OccurredAt(),
		})
	}
	return events
}
