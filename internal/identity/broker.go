// Package identity tracks which actor is signed in on this device and
// notifies subscribers when that changes.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/notify"
)

// ErrEmptyActor indicates a sign-in without an actor id.
var ErrEmptyActor = errors.New("identity: actor id is required")

// Broker is the device-local identity provider.
type Broker struct {
	verifier *TokenVerifier

	// publishMu serializes state change + publish so subscribers see changes in order.
	publishMu sync.Mutex
	mu        sync.RWMutex
	actorID   string
	hub       *notify.Hub[ports.IdentityChange]
}

// NewBroker creates a signed-out broker. verifier may be nil when only
// SignIn with a pre-verified actor id is used.
func NewBroker(verifier *TokenVerifier) *Broker {
	return &Broker{
		verifier: verifier,
		hub:      notify.NewHub[ports.IdentityChange](0),
	}
}

// CurrentIdentity returns the signed-in actor or "".
func (b *Broker) CurrentIdentity(context.Context) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.actorID, nil
}

// SubscribeIdentity streams identity changes.
func (b *Broker) SubscribeIdentity() (<-chan ports.IdentityChange, func()) {
	return b.hub.Subscribe()
}

// SignInWithToken verifies an access token issued by the auth service and signs in its subject.
func (b *Broker) SignInWithToken(token string) (string, error) {
	if b.verifier == nil {
		return "", ErrNoVerifier
	}
	actorID, err := b.verifier.Subject(token)
	if err != nil {
		return "", err
	}
	return actorID, b.SignIn(actorID)
}

// SignIn makes actorID the current identity. Re-signing the same actor is a no-op.
func (b *Broker) SignIn(actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ErrEmptyActor
	}

	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	changed := b.actorID != actorID
	b.actorID = actorID
	b.mu.Unlock()

	if changed {
		b.hub.Publish(ports.IdentityChange{ActorID: actorID})
	}
	return nil
}

// SignOut clears the current identity. Signing out while signed out is a no-op.
func (b *Broker) SignOut() {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	b.mu.Lock()
	wasSignedIn := b.actorID != ""
	b.actorID = ""
	b.mu.Unlock()

	if wasSignedIn {
		b.hub.Publish(ports.IdentityChange{SignedOut: true})
	}
}

var _ ports.IdentityProvider = (*Broker)(nil)
