package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/mise/internal/db"
	"github.com/fr0stylo/mise/internal/db/queries"
	"github.com/fr0stylo/mise/internal/identity"
)

func newHistoryFixture(t *testing.T) (*echo.Echo, *identity.Broker) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	base := time.Date(2026, 10, 1, 7, 0, 0, 0, time.UTC)
	rows := []queries.InsertActivityEventParams{
		{EventID: "evt-1", ActorID: "actor-1", Kind: "view_recipe", PayloadJson: `{"recipe_id":"r-1"}`, OccurredAt: base.Format(time.RFC3339Nano), OccurredAtMs: base.UnixMilli()},
		{EventID: "evt-2", ActorID: "actor-1", Kind: "view_recipe", PayloadJson: `{"recipe_id":"r-2"}`, OccurredAt: base.Add(time.Minute).Format(time.RFC3339Nano), OccurredAtMs: base.Add(time.Minute).UnixMilli()},
		{EventID: "evt-3", ActorID: "actor-1", Kind: "search", PayloadJson: `{"query":"dal"}`, OccurredAt: base.Add(2 * time.Minute).Format(time.RFC3339Nano), OccurredAtMs: base.Add(2 * time.Minute).UnixMilli()},
		{EventID: "evt-4", ActorID: "actor-2", Kind: "search", PayloadJson: `{"query":"pho"}`, OccurredAt: base.Format(time.RFC3339Nano), OccurredAtMs: base.UnixMilli()},
	}
	if err := database.AppendActivityEvents(context.Background(), rows); err != nil {
		t.Fatalf("seed events: %v", err)
	}

	broker := identity.NewBroker(nil)
	e := echo.New()
	NewHistoryRoutes(database, broker).RegisterRoutes(e)
	return e, broker
}

func TestHistoryRequiresSignedInActor(t *testing.T) {
	e, _ := newHistoryFixture(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activity/history", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHistoryListsOwnEventsInOrder(t *testing.T) {
	e, broker := newHistoryFixture(t)
	if err := broker.SignIn("actor-1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activity/history?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var entries []historyEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 2 || entries[0].EventID != "evt-1" || entries[1].EventID != "evt-2" {
		t.Fatalf("unexpected history: %#v", entries)
	}
	if string(entries[0].Payload) != `{"recipe_id":"r-1"}` {
		t.Fatalf("unexpected payload: %s", entries[0].Payload)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activity/history?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestSummaryCountsByKind(t *testing.T) {
	e, broker := newHistoryFixture(t)
	if err := broker.SignIn("actor-1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/activity/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var counts map[string]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if counts["view_recipe"] != 2 || counts["search"] != 1 || len(counts) != 2 {
		t.Fatalf("unexpected summary: %#v", counts)
	}
}
