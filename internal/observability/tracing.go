package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	dbTracerName   = "mise/db"
	sinkTracerName = "mise/activity"
)

type contextKey string

const (
	actorIDContextKey contextKey = "observability.actor_id"
	requestIDKey      contextKey = "observability.request_id"
	routeKey          contextKey = "observability.route"
	flushTriggerKey   contextKey = "observability.flush_trigger"
)

// Span is the application-level tracing span contract.
type Span interface {
	End()
	RecordError(error)
}

type otelSpan struct {
	inner trace.Span
}

// StartDBSpan starts a database tracing span for one query operation.
func StartDBSpan(ctx context.Context, queryName, operation string) (context.Context, Span) {
	queryName = strings.TrimSpace(queryName)
	if queryName == "" {
		queryName = "unknown"
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.system.name", "sqlite"),
		attribute.String("db.query_name", queryName),
		attribute.String("db.operation", strings.TrimSpace(operation)),
	}
	if actorID, ok := ActorIDFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("enduser.id", actorID))
	}

	ctx, span := otel.Tracer(dbTracerName).Start(ctx, "db."+queryName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, otelSpan{inner: span}
}

// StartSinkSpan starts a span around one activity batch submission.
// The trigger is also stored in ctx for log records.
func StartSinkSpan(ctx context.Context, trigger string, batchSize int) (context.Context, Span) {
	trigger = strings.TrimSpace(trigger)
	if trigger != "" {
		ctx = context.WithValue(ctx, flushTriggerKey, trigger)
	}
	ctx, span := otel.Tracer(sinkTracerName).Start(ctx, "activity.flush",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("mise.flush.trigger", trigger),
			attribute.Int("mise.flush.batch_size", batchSize),
		),
	)
	return ctx, otelSpan{inner: span}
}

// WithActor enriches context and current span with the signed-in actor.
func WithActor(ctx context.Context, actorID string) context.Context {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, actorIDContextKey, actorID)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", actorID))
	return ctx
}

// WithRequestMetadata enriches context and current span with request metadata.
func WithRequestMetadata(ctx context.Context, requestID, route string) context.Context {
	requestID = strings.TrimSpace(requestID)
	route = strings.TrimSpace(route)
	if requestID != "" {
		ctx = context.WithValue(ctx, requestIDKey, requestID)
	}
	if route != "" {
		ctx = context.WithValue(ctx, routeKey, route)
	}
	setSpanRequestAttributes(ctx, requestID, route)
	return ctx
}

// ActorIDFromContext extracts the signed-in actor id.
func ActorIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(actorIDContextKey).(string)
	return value, ok && value != ""
}

// RequestIDFromContext extracts request id.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(requestIDKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// RouteFromContext extracts normalized route path.
func RouteFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(routeKey).(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

// FlushTriggerFromContext extracts the trigger of the batch being submitted.
func FlushTriggerFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(flushTriggerKey).(string)
	return value, ok && value != ""
}

func setSpanRequestAttributes(ctx context.Context, requestID, route string) {
	span := trace.SpanFromContext(ctx)
	if span == nil {
		return
	}
	attrs := make([]attribute.KeyValue, 0, 2)
	if requestID != "" {
		attrs = append(attrs, attribute.String("request.id", requestID))
	}
	if route != "" {
		attrs = append(attrs, attribute.String("http.route", route))
	}
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

func (s otelSpan) End() {
	if s.inner == nil {
		return
	}
	s.inner.End()
}

func (s otelSpan) RecordError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.RecordError(err)
	s.inner.SetStatus(codes.Error, err.Error())
}
