package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const activityMeterName = "mise/activity"

// ActivityMetrics records activity tracker counters. A nil *ActivityMetrics is a no-op.
type ActivityMetrics struct {
	accepted metric.Int64Counter
	flushed  metric.Int64Counter
	failed   metric.Int64Counter
	requeued metric.Int64Counter
	dropped  metric.Int64Counter
}

// NewActivityMetrics creates counters on the global meter provider, so call it
// after SetupOpenTelemetry.
func NewActivityMetrics() *ActivityMetrics {
	meter := otel.Meter(activityMeterName)
	return &ActivityMetrics{
		accepted: int64Counter(meter, "mise.activity.accepted", "Activity records admitted to the queue."),
		flushed:  int64Counter(meter, "mise.activity.flushed", "Activity records delivered to the sink."),
		failed:   int64Counter(meter, "mise.activity.failed", "Activity records in batches the sink rejected."),
		requeued: int64Counter(meter, "mise.activity.requeued", "Activity records put back after a failed flush."),
		dropped:  int64Counter(meter, "mise.activity.dropped", "Activity records discarded after a failed flush."),
	}
}

func int64Counter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit("{event}"))
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
}

// Accepted counts one admitted record.
func (m *ActivityMetrics) Accepted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.accepted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *ActivityMetrics) Flushed(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.flushed.Add(ctx, int64(n))
}

func (m *ActivityMetrics) Failed(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, int64(n))
}

func (m *ActivityMetrics) Requeued(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.requeued.Add(ctx, int64(n))
}

func (m *ActivityMetrics) Dropped(ctx context.Context, n int, reason string) {
	if m == nil {
		return
	}
	m.dropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}
