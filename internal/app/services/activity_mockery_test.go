package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/mise/internal/app/domain"
	"github.com/fr0stylo/mise/internal/app/ports"
	portmocks "github.com/fr0stylo/mise/internal/app/ports/mocks"
)

func TestActivityTracker_FlushAnnotatesWithCurrentActor(t *testing.T) {
	sink := portmocks.NewMockActivitySink(t)
	identities := portmocks.NewMockIdentityProvider(t)

	changes := make(chan ports.IdentityChange)
	identities.EXPECT().SubscribeIdentity().Return(changes, func() {})
	identities.EXPECT().CurrentIdentity(mock.Anything).Return("actor-9", nil)

	sink.EXPECT().InsertActivityEvents(mock.Anything, mock.MatchedBy(func(events []ports.ActivityEvent) bool {
		return len(events) == 2 &&
			events[0].Kind == domain.ActivityCookStart &&
			events[1].Kind == domain.ActivityCookComplete &&
			events[0].ActorID == "actor-9" &&
			events[1].ActorID == "actor-9" &&
			events[0].EventID != events[1].EventID
	})).Return(nil).Once()

	tracker := NewActivityTracker(context.Background(), sink, identities, nil, testTrackerConfig())
	tracker.LogCookStart("r-5", "Bibimbap")
	tracker.LogCookComplete("r-5", "Bibimbap")
	tracker.Flush(context.Background())
	tracker.Destroy(context.Background())

	stats := tracker.Stats()
	if stats.FlushBatches != 1 || stats.FlushEvents != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestActivityTracker_IdentityLookupFailureStartsSignedOut(t *testing.T) {
	sink := portmocks.NewMockActivitySink(t)
	identities := portmocks.NewMockIdentityProvider(t)

	identities.EXPECT().SubscribeIdentity().Return(make(chan ports.IdentityChange), func() {})
	identities.EXPECT().CurrentIdentity(mock.Anything).Return("", errors.New("keychain locked"))

	tracker := NewActivityTracker(context.Background(), sink, identities, nil, testTrackerConfig())
	tracker.LogRecipeView("r-1", "Pad Thai")
	tracker.Flush(context.Background())
	tracker.Destroy(context.Background())

	if stats := tracker.Stats(); stats.SignedIn || stats.Accepted != 0 {
		t.Fatalf("expected no admissions without identity, stats=%+v", stats)
	}
	sink.AssertNotCalled(t, "InsertActivityEvents", mock.Anything, mock.Anything)
}
