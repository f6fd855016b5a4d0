package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fr0stylo/mise/internal/app/ports"
)

var errSinkUnavailable = errors.New("sink unavailable")

// recordingSink records every attempt and fails the next `failures` calls.
type recordingSink struct {
	mu       sync.Mutex
	attempts [][]ports.ActivityEvent
	batches  [][]ports.ActivityEvent
	failures int
	onInsert func(call int)
	release  chan struct{}
}

func (s *recordingSink) InsertActivityEvents(_ context.Context, events []ports.ActivityEvent) error {
	copied := append([]ports.ActivityEvent(nil), events...)

	s.mu.Lock()
	s.attempts = append(s.attempts, copied)
	call := len(s.attempts)
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	hook := s.onInsert
	release := s.release
	s.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if release != nil {
		<-release
	}
	if fail {
		return errSinkUnavailable
	}

	s.mu.Lock()
	s.batches = append(s.batches, copied)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) attemptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

func (s *recordingSink) successful() [][]ports.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]ports.ActivityEvent(nil), s.batches...)
}

type identityFake struct {
	actorID   string
	changes   chan ports.IdentityChange
	cancelled atomic.Bool
}

func newIdentityFake(actorID string) *identityFake {
	return &identityFake{actorID: actorID, changes: make(chan ports.IdentityChange)}
}

func (f *identityFake) CurrentIdentity(context.Context) (string, error) {
	return f.actorID, nil
}

func (f *identityFake) SubscribeIdentity() (<-chan ports.IdentityChange, func()) {
	return f.changes, func() { f.cancelled.Store(true) }
}

type lifecycleFake struct {
	signals   chan ports.LifecycleSignal
	cancelled atomic.Bool
}

func newLifecycleFake() *lifecycleFake {
	return &lifecycleFake{signals: make(chan ports.LifecycleSignal)}
}

func (f *lifecycleFake) SubscribeLifecycle() (<-chan ports.LifecycleSignal, func()) {
	return f.signals, func() { f.cancelled.Store(true) }
}

func testTrackerConfig() ActivityTrackerConfig {
	return ActivityTrackerConfig{
		FlushInterval: time.Hour,
		StatsInterval: time.Hour,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newTestTracker(t *testing.T, sink ports.ActivitySink, identities ports.IdentityProvider, lifecycle ports.LifecycleSource, cfg ActivityTrackerConfig) *ActivityTracker {
	t.Helper()
	tracker := NewActivityTracker(context.Background(), sink, identities, lifecycle, cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		tracker.Destroy(ctx)
	})
	return tracker
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func eventIDs(events []ports.ActivityEvent) []string {
	ids := make([]string, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.EventID)
	}
	return ids
}

func recipeIDs(events []ports.ActivityEvent) []string {
	ids := make([]string, 0, len(events))
	for _, event := range events {
		id, _ := event.Payload["recipe_id"].(string)
		ids = append(ids, id)
	}
	return ids
}
