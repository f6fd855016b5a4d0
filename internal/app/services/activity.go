package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fr0stylo/mise/internal/app/domain"
	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/observability"
)

const (
	// DefaultActivityBatchSize is the queue length that triggers an automatic flush.
	DefaultActivityBatchSize = 10
	// DefaultActivityFlushInterval is the periodic flush cadence.
	DefaultActivityFlushInterval = 5 * time.Second
	// DefaultActivityRequeueCeilingFactor bounds requeued records to this many batches.
	DefaultActivityRequeueCeilingFactor = 3
)

// ActivityTrackerConfig tunes batching and wires ambient dependencies.
type ActivityTrackerConfig struct {
	BatchSize            int
	FlushInterval        time.Duration
	RequeueCeilingFactor int
	StatsInterval        time.Duration
	Logger               *slog.Logger
	Metrics              *observability.ActivityMetrics
	Now                  func() time.Time
}

// ActivityStats is a point-in-time view of tracker counters.
type ActivityStats struct {
	Queued       int   `json:"queued"`
	SignedIn     bool  `json:"signed_in"`
	Accepted     int64 `json:"accepted"`
	FlushBatches int64 `json:"flush_batches"`
	FlushEvents  int64 `json:"flush_events"`
	FlushErrors  int64 `json:"flush_errors"`
	Requeued     int64 `json:"requeued"`
	Dropped      int64 `json:"dropped"`
}

// ActivityTracker batches user-activity events and delivers them to an ActivitySink.
//
// Log calls never block on delivery and never report failures. Records are only
// accepted while an actor is signed in; signing out discards everything queued.
// Queued records live in memory only and are lost if the process dies before a flush.
type ActivityTracker struct {
	sink      ports.ActivitySink
	log       *slog.Logger
	metrics   *observability.ActivityMetrics
	now       func() time.Time
	batchSize int
	baseCtx   context.Context

	mu       sync.Mutex
	queue    *activityQueue
	identity identityCache
	closed   bool

	inflight    sync.WaitGroup
	stop        chan struct{}
	loopDone    chan struct{}
	destroyOnce sync.Once

	accepted     atomic.Int64
	flushBatches atomic.Int64
	flushEvents  atomic.Int64
	flushErrors  atomic.Int64
	requeued     atomic.Int64
	dropped      atomic.Int64
}

// NewActivityTracker creates a tracker, loads the current identity and starts the
// background binder that flushes on a timer, on lifecycle signals and reacts to
// identity changes. lifecycle may be nil. Call Destroy to release it.
func NewActivityTracker(ctx context.Context, sink ports.ActivitySink, identities ports.IdentityProvider, lifecycle ports.LifecycleSource, cfg ActivityTrackerConfig) *ActivityTracker {
	cfg = cfg.withDefaults()

	t := &ActivityTracker{
		sink:      sink,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
		batchSize: cfg.BatchSize,
		baseCtx:   context.WithoutCancel(ctx),
		queue:     newActivityQueue(cfg.BatchSize * cfg.RequeueCeilingFactor),
		stop:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}

	streams := binderStreams{}
	if identities != nil {
		// Subscribe before the lookup so a change racing the lookup is still delivered.
		streams.identity, streams.cancelIdentity = identities.SubscribeIdentity()
		actorID, err := identities.CurrentIdentity(ctx)
		if err != nil {
			t.log.Warn("activity_identity_lookup_failed", "error", err)
		} else {
			t.identity.set(actorID)
		}
	}
	if lifecycle != nil {
		streams.lifecycle, streams.cancelLifecycle = lifecycle.SubscribeLifecycle()
	}

	go t.run(streams, cfg.FlushInterval, cfg.StatsInterval)
	return t
}

func (c ActivityTrackerConfig) withDefaults() ActivityTrackerConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultActivityBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultActivityFlushInterval
	}
	if c.RequeueCeilingFactor <= 0 {
		c.RequeueCeilingFactor = DefaultActivityRequeueCeilingFactor
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// LogRecipeView records that a recipe detail was opened.
func (t *ActivityTracker) LogRecipeView(recipeID, recipeName string) {
	t.admit(domain.ActivityViewRecipe, domain.RecipePayload(recipeID, recipeName))
}

// LogCookStart records that guided cooking started.
func (t *ActivityTracker) LogCookStart(recipeID, recipeName string) {
	t.admit(domain.ActivityCookStart, domain.RecipePayload(recipeID, recipeName))
}

// LogCookComplete records that guided cooking finished.
func (t *ActivityTracker) LogCookComplete(recipeID, recipeName string) {
	t.admit(domain.ActivityCookComplete, domain.RecipePayload(recipeID, recipeName))
}

// LogSearch records a search query. Blank queries are ignored.
func (t *ActivityTracker) LogSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	t.admit(domain.ActivitySearch, domain.SearchPayload(query))
}

// Flush submits everything queued and returns once the attempt has finished.
// Failures are requeued or dropped internally and never returned.
func (t *ActivityTracker) Flush(ctx context.Context) {
	t.mu.Lock()
	batch, actorID := t.takeBatchLocked()
	t.mu.Unlock()
	if batch == nil {
		return
	}
	t.submit(ctx, batch, actorID, "explicit")
}

// Destroy stops the timer and both subscriptions, waits for detached flushes and
// runs one final flush. The tracker must not be used afterwards; Log calls made
// after Destroy are ignored today but that is not a guarantee.
func (t *ActivityTracker) Destroy(ctx context.Context) {
	t.destroyOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()

		close(t.stop)
		<-t.loopDone

		idle := make(chan struct{})
		go func() {
			t.inflight.Wait()
			close(idle)
		}()
		select {
		case <-idle:
		case <-ctx.Done():
			t.log.Warn("activity_destroy_inflight_abandoned", "error", ctx.Err())
		}

		t.Flush(ctx)
		t.logStats("activity_tracker_destroyed")
	})
}

// Stats returns current counters.
func (t *ActivityTracker) Stats() ActivityStats {
	t.mu.Lock()
	queued := t.queue.len()
	_, signedIn := t.identity.current()
	t.mu.Unlock()

	return ActivityStats{
		Queued:       queued,
		SignedIn:     signedIn,
		Accepted:     t.accepted.Load(),
		FlushBatches: t.flushBatches.Load(),
		FlushEvents:  t.flushEvents.Load(),
		FlushErrors:  t.flushErrors.Load(),
		Requeued:     t.requeued.Load(),
		Dropped:      t.dropped.Load(),
	}
}

func (t *ActivityTracker) admit(kind domain.ActivityKind, payload map[string]any) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	actorID, ok := t.identity.current()
	if !ok {
		t.mu.Unlock()
		return
	}

	var batch []domain.ActivityRecord
	if t.queue.push(domain.NewActivityRecord(kind, payload, t.now())) >= t.batchSize {
		batch = t.queue.drain()
		t.inflight.Add(1)
	}
	t.mu.Unlock()

	t.accepted.Add(1)
	t.metrics.Accepted(t.baseCtx, string(kind))

	if batch != nil {
		go t.submitDetached(batch, actorID, "threshold")
	}
}

func (t *ActivityTracker) logStats(msg string) {
	stats := t.Stats()
	t.log.Info(msg,
		"queued", stats.Queued,
		"signed_in", stats.SignedIn,
		"accepted", stats.Accepted,
		"flush_batches", stats.FlushBatches,
		"flush_events", stats.FlushEvents,
		"flush_errors", stats.FlushErrors,
		"requeued", stats.Requeued,
		"dropped", stats.Dropped,
	)
}
