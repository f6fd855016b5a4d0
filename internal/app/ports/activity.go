package ports

import (
	"context"
	"time"

	"github.com/fr0stylo/mise/internal/app/domain"
)

// ActivityEvent is one activity record attributed to the actor that was signed in
// when its batch was taken off the queue.
type ActivityEvent struct {
	EventID    string
	ActorID    string
	Kind       domain.ActivityKind
	Payload    map[string]any
	OccurredAt time.Time
}

// ActivitySink accepts ordered activity batches. A batch is stored as a whole or not at all.
type ActivitySink interface {
	InsertActivityEvents(ctx context.Context, events []ActivityEvent) error
}

// IdentityChange is one notification from the identity provider.
type IdentityChange struct {
	ActorID   string
	SignedOut bool
}

// IdentityProvider exposes who is signed in on this device.
type IdentityProvider interface {
	// CurrentIdentity returns the signed-in actor, or "" when nobody is signed in.
	CurrentIdentity(ctx context.Context) (string, error)
	// SubscribeIdentity streams identity changes until the returned cancel func is called.
	SubscribeIdentity() (<-chan IdentityChange, func())
}

// LifecycleState names a host lifecycle transition.
type LifecycleState string

const (
	LifecycleActive      LifecycleState = "active"
	LifecycleVisible     LifecycleState = "visible"
	LifecycleHidden      LifecycleState = "hidden"
	LifecycleBackground  LifecycleState = "background"
	LifecycleInactive    LifecycleState = "inactive"
	LifecycleTerminating LifecycleState = "terminating"
)

// LifecycleSignal is one lifecycle transition reported by the host.
type LifecycleSignal struct {
	State LifecycleState
}

// GoingAway reports whether the host may stop running soon after this signal.
func (s LifecycleSignal) GoingAway() bool {
	switch s.State {
	case LifecycleHidden, LifecycleBackground, LifecycleInactive, LifecycleTerminating:
		return true
	default:
		return false
	}
}

// LifecycleSource streams host lifecycle transitions.
type LifecycleSource interface {
	SubscribeLifecycle() (<-chan LifecycleSignal, func())
}
