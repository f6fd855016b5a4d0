// Package lifecycle turns host lifecycle transitions into a subscribable stream.
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/notify"
)

// ErrUnknownState indicates a lifecycle state the shell does not recognise.
var ErrUnknownState = errors.New("lifecycle: unknown state")

// Signals is the host lifecycle source. The UI bridge reports visibility and
// app-state changes through Notify; WatchProcess adds OS termination signals.
type Signals struct {
	hub *notify.Hub[ports.LifecycleSignal]
}

// NewSignals creates an empty lifecycle source.
func NewSignals() *Signals {
	return &Signals{hub: notify.NewHub[ports.LifecycleSignal](0)}
}

// SubscribeLifecycle streams lifecycle transitions.
func (s *Signals) SubscribeLifecycle() (<-chan ports.LifecycleSignal, func()) {
	return s.hub.Subscribe()
}

// Notify publishes one transition.
func (s *Signals) Notify(state ports.LifecycleState) {
	s.hub.Publish(ports.LifecycleSignal{State: state})
}

// ParseState maps the names used by web visibility and mobile app-state APIs.
func ParseState(raw string) (ports.LifecycleState, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "foreground":
		return ports.LifecycleActive, nil
	case "visible":
		return ports.LifecycleVisible, nil
	case "hidden":
		return ports.LifecycleHidden, nil
	case "background", "backgrounded":
		return ports.LifecycleBackground, nil
	case "inactive":
		return ports.LifecycleInactive, nil
	case "terminating", "terminate":
		return ports.LifecycleTerminating, nil
	default:
		return "", ErrUnknownState
	}
}

// WatchProcess publishes LifecycleTerminating whenever the process receives one
// of sigs, until ctx is done.
func (s *Signals) WatchProcess(ctx context.Context, sigs ...os.Signal) {
	if len(sigs) == 0 {
		return
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				s.Notify(ports.LifecycleTerminating)
			}
		}
	}()
}

var _ ports.LifecycleSource = (*Signals)(nil)
