package activity

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fr0stylo/mise/internal/adapters/sqlite"
	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/db"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

const (
	testToken  = "collector-token"
	testSecret = "collector-secret"
)

func newTestHandler(t *testing.T) (*Handler, *db.Database) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "collector"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(testToken, testSecret, sqlite.NewActivitySink(database), log), database
}

func TestHandleStoresPublishedBatch(t *testing.T) {
	t.Parallel()

	h, database := newTestHandler(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Handle(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := eventpublisher.Client{Endpoint: server.URL, Token: testToken, Secret: testSecret, Source: "tests/device"}
	occurred := time.Date(2026, 10, 4, 12, 0, 0, 0, time.UTC)
	events := []eventpublisher.Event{
		{ID: "evt-1", Kind: "cook_start", ActorID: "actor-9", Payload: map[string]any{"recipe_id": "r-1"}, OccurredAt: occurred},
		{ID: "evt-2", Kind: "cook_complete", ActorID: "actor-9", Payload: map[string]any{"recipe_id": "r-1"}, OccurredAt: occurred.Add(time.Minute)},
	}
	ctx := context.Background()
	if err := client.PublishBatch(ctx, events); err != nil {
		t.Fatalf("publish batch: %v", err)
	}
	// Redelivery is idempotent.
	if err := client.PublishBatch(ctx, events); err != nil {
		t.Fatalf("republish batch: %v", err)
	}

	rows, err := database.ListActivityEventsByActor(ctx, "actor-9", 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("unexpected row count: got=%d want=2", len(rows))
	}
	if rows[0].EventID != "evt-1" || rows[1].EventID != "evt-2" {
		t.Fatalf("unexpected order: %q, %q", rows[0].EventID, rows[1].EventID)
	}
}

func TestHandleRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	body, err := eventpublisher.BuildBatchBody("tests", []eventpublisher.Event{{ID: "evt-1", Kind: "search", ActorID: "actor-1"}})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}

	cases := []struct {
		name      string
		auth      string
		signature string
	}{
		{name: "missing token", auth: "", signature: eventpublisher.Sign(body, testSecret)},
		{name: "wrong token", auth: "Bearer nope", signature: eventpublisher.Sign(body, testSecret)},
		{name: "wrong signature", auth: "Bearer " + testToken, signature: eventpublisher.Sign(body, "other")},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, eventpublisher.WebhookPath, bytes.NewReader(body))
		if tc.auth != "" {
			req.Header.Set(AuthorizationHeader, tc.auth)
		}
		req.Header.Set(eventpublisher.SignatureHeader, tc.signature)
		rec := httptest.NewRecorder()
		if err := h.Handle(rec, req); err != nil {
			t.Fatalf("%s: handle: %v", tc.name, err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: unexpected status: got=%d want=%d", tc.name, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestHandleRejectsForeignPayload(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	body := []byte(`[{"specversion":"1.0","id":"x","source":"tests","type":"dev.cdevents.service.deployed.0.3.0"}]`)
	req := httptest.NewRequest(http.MethodPost, eventpublisher.WebhookPath, bytes.NewReader(body))
	req.Header.Set(AuthorizationHeader, "Bearer "+testToken)
	req.Header.Set(eventpublisher.SignatureHeader, eventpublisher.Sign(body, testSecret))
	rec := httptest.NewRecorder()
	if err := h.Handle(rec, req); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

type failingSink struct{}

func (failingSink) InsertActivityEvents(context.Context, []ports.ActivityEvent) error {
	return errors.New("disk full")
}

func TestHandleReturnsSinkError(t *testing.T) {
	t.Parallel()

	h := NewHandler(testToken, testSecret, failingSink{}, nil)
	body, err := eventpublisher.BuildBatchBody("tests", []eventpublisher.Event{{ID: "evt-1", Kind: "search", ActorID: "actor-1"}})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, eventpublisher.WebhookPath, bytes.NewReader(body))
	req.Header.Set(AuthorizationHeader, "Bearer "+testToken)
	req.Header.Set(eventpublisher.SignatureHeader, eventpublisher.Sign(body, testSecret))
	if err := h.Handle(httptest.NewRecorder(), req); err == nil {
		t.Fatalf("expected sink error")
	}
}

func TestHandleRateLimitsDeliveries(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	h.SetRateLimit(0.001, 1)
	body, err := eventpublisher.BuildBatchBody("tests", []eventpublisher.Event{{ID: "evt-1", Kind: "search", ActorID: "actor-1"}})
	if err != nil {
		t.Fatalf("build body: %v", err)
	}

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, eventpublisher.WebhookPath, bytes.NewReader(body))
		req.Header.Set(AuthorizationHeader, "Bearer "+testToken)
		req.Header.Set(eventpublisher.SignatureHeader, eventpublisher.Sign(body, testSecret))
		rec := httptest.NewRecorder()
		if err := h.Handle(rec, req); err != nil {
			t.Fatalf("handle: %v", err)
		}
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes: %v", codes)
	}
}
