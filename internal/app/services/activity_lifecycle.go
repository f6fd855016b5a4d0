package services

import (
	"time"

	"github.com/fr0stylo/mise/internal/app/ports"
)

type binderStreams struct {
	identity        <-chan ports.IdentityChange
	cancelIdentity  func()
	lifecycle       <-chan ports.LifecycleSignal
	cancelLifecycle func()
}

func (s binderStreams) cancel() {
	if s.cancelIdentity != nil {
		s.cancelIdentity()
	}
	if s.cancelLifecycle != nil {
		s.cancelLifecycle()
	}
}

// run is the lifecycle binder. Timer, lifecycle and identity triggers are all
// handled here so their ordering is explicit; flushes themselves are detached.
func (t *ActivityTracker) run(streams binderStreams, flushInterval, statsInterval time.Duration) {
	defer close(t.loopDone)
	defer streams.cancel()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	identityCh := streams.identity
	lifecycleCh := streams.lifecycle
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.flushDetached("timer")
		case change, ok := <-identityCh:
			if !ok {
				identityCh = nil
				continue
			}
			t.applyIdentity(change)
		case signal, ok := <-lifecycleCh:
			if !ok {
				lifecycleCh = nil
				continue
			}
			if signal.GoingAway() {
				t.flushDetached("lifecycle_" + string(signal.State))
			}
		case <-statsTicker.C:
			t.logStats("activity_tracker_stats")
		}
	}
}

// applyIdentity updates the cached actor. Signing out wipes the queue without
// flushing: nobody is left to attribute those records to.
func (t *ActivityTracker) applyIdentity(change ports.IdentityChange) {
	t.mu.Lock()
	if change.SignedOut || change.ActorID == "" {
		t.identity.clear()
		wiped := t.queue.reset()
		t.mu.Unlock()
		if wiped > 0 {
			t.log.Info("activity_queue_wiped", "reason", "signed_out", "records", wiped)
		}
		return
	}
	t.identity.set(change.ActorID)
	t.mu.Unlock()
}
