package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ceevent "github.com/cloudevents/sdk-go/v2/event"

	"github.com/fr0stylo/mise/internal/app/domain"
	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

func TestActivitySinkPostsBatchInOrder(t *testing.T) {
	t.Parallel()

	received := make(chan []ceevent.Event, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Header.Get("X-Webhook-Signature") != eventpublisher.Sign(body, "secret") {
			http.Error(w, "bad signature", http.StatusUnauthorized)
			return
		}
		var batch []ceevent.Event
		if err := json.Unmarshal(body, &batch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		received <- batch
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sink := NewActivitySink(eventpublisher.Client{
		Endpoint: server.URL,
		Token:    "token",
		Secret:   "secret",
		Source:   "mise/test",
	})

	now := time.Date(2026, 10, 4, 9, 0, 0, 0, time.UTC)
	err := sink.InsertActivityEvents(context.Background(), []ports.ActivityEvent{
		{EventID: "a", ActorID: "actor-1", Kind: domain.ActivityCookStart, Payload: domain.RecipePayload("r-1", "Dal"), OccurredAt: now},
		{EventID: "b", ActorID: "actor-1", Kind: domain.ActivityCookComplete, Payload: domain.RecipePayload("r-1", "Dal"), OccurredAt: now.Add(time.Minute)},
	})
	if err != nil {
		t.Fatalf("insert activity events: %v", err)
	}

	batch := <-received
	if len(batch) != 2 {
		t.Fatalf("unexpected batch size: %d", len(batch))
	}
	if batch[0].ID() != "a" || batch[1].ID() != "b" {
		t.Fatalf("unexpected order: %s, %s", batch[0].ID(), batch[1].ID())
	}
	if batch[1].Type() != "app.mise.activity.cook_complete" {
		t.Fatalf("unexpected type: %s", batch[1].Type())
	}
}

func TestActivitySinkReturnsRemoteFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sink := NewActivitySink(eventpublisher.Client{Endpoint: server.URL, Token: "token", Secret: "secret"})
	err := sink.InsertActivityEvents(context.Background(), []ports.ActivityEvent{
		{EventID: "a", ActorID: "actor-1", Kind: domain.ActivitySearch, Payload: domain.SearchPayload("pho"), OccurredAt: time.Now()},
	})
	if err == nil {
		t.Fatalf("expected remote failure to surface")
	}
}
