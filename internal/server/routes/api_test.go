package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/app/services"
	"github.com/fr0stylo/mise/internal/db"
	"github.com/fr0stylo/mise/internal/identity"
)

type activityLoggerFake struct {
	mu      sync.Mutex
	calls   []string
	flushes int
}

func (f *activityLoggerFake) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *activityLoggerFake) LogRecipeView(recipeID, recipeName string) {
	f.record(fmt.Sprintf("view:%s:%s", recipeID, recipeName))
}

func (f *activityLoggerFake) LogCookStart(recipeID, recipeName string) {
	f.record(fmt.Sprintf("start:%s:%s", recipeID, recipeName))
}

func (f *activityLoggerFake) LogCookComplete(recipeID, recipeName string) {
	f.record(fmt.Sprintf("complete:%s:%s", recipeID, recipeName))
}

func (f *activityLoggerFake) LogSearch(query string) {
	f.record("search:" + query)
}

func (f *activityLoggerFake) Flush(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func (f *activityLoggerFake) Stats() services.ActivityStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return services.ActivityStats{Queued: len(f.calls), SignedIn: true, Accepted: int64(len(f.calls))}
}

type sessionManagerFake struct {
	err       error
	token     string
	signedOut bool
}

func (f *sessionManagerFake) SignInWithToken(token string) (string, error) {
	f.token = token
	if f.err != nil {
		return "", f.err
	}
	return "actor-1", nil
}

func (f *sessionManagerFake) SignOut() { f.signedOut = true }

type lifecycleNotifierFake struct {
	states []ports.LifecycleState
}

func (f *lifecycleNotifierFake) Notify(state ports.LifecycleState) {
	f.states = append(f.states, state)
}

type apiFixture struct {
	e         *echo.Echo
	activity  *activityLoggerFake
	sessions  *sessionManagerFake
	lifecycle *lifecycleNotifierFake
}

func newAPIFixture() apiFixture {
	fx := apiFixture{
		e:         echo.New(),
		activity:  &activityLoggerFake{},
		sessions:  &sessionManagerFake{},
		lifecycle: &lifecycleNotifierFake{},
	}
	NewAPIRoutes(fx.activity, fx.sessions, fx.lifecycle).RegisterRoutes(fx.e)
	NewHealthRoutes(fx.activity, nil).RegisterRoutes(fx.e)
	return fx
}

func (fx apiFixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	fx.e.ServeHTTP(rec, req)
	return rec
}

func TestRecipeActivityRoutesAcceptEvents(t *testing.T) {
	fx := newAPIFixture()

	cases := []struct {
		path string
		want string
	}{
		{"/api/v1/activity/recipe-view", "view:r-1:Ramen"},
		{"/api/v1/activity/cook-start", "start:r-1:Ramen"},
		{"/api/v1/activity/cook-complete", "complete:r-1:Ramen"},
	}
	for _, tc := range cases {
		rec := fx.do(http.MethodPost, tc.path, `{"recipe_id":" r-1 ","recipe_name":"Ramen"}`)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("%s: expected 202, got %d", tc.path, rec.Code)
		}
	}

	if len(fx.activity.calls) != len(cases) {
		t.Fatalf("unexpected calls: %#v", fx.activity.calls)
	}
	for i, tc := range cases {
		if fx.activity.calls[i] != tc.want {
			t.Fatalf("unexpected call at %d: got=%q want=%q", i, fx.activity.calls[i], tc.want)
		}
	}
}

func TestRecipeActivityRequiresRecipeID(t *testing.T) {
	fx := newAPIFixture()

	rec := fx.do(http.MethodPost, "/api/v1/activity/recipe-view", `{"recipe_name":"Ramen"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(fx.activity.calls) != 0 {
		t.Fatalf("expected no activity, got %#v", fx.activity.calls)
	}
}

func TestSearchAndFlushRoutes(t *testing.T) {
	fx := newAPIFixture()

	if rec := fx.do(http.MethodPost, "/api/v1/activity/search", `{"query":"miso"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if rec := fx.do(http.MethodPost, "/api/v1/activity/flush", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(fx.activity.calls) != 1 || fx.activity.calls[0] != "search:miso" {
		t.Fatalf("unexpected calls: %#v", fx.activity.calls)
	}
	if fx.activity.flushes != 1 {
		t.Fatalf("expected one flush, got %d", fx.activity.flushes)
	}
}

func TestSessionRoutes(t *testing.T) {
	fx := newAPIFixture()

	if rec := fx.do(http.MethodPost, "/api/v1/session", `{"access_token":"tok"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if fx.sessions.token != "tok" {
		t.Fatalf("unexpected token passed: %q", fx.sessions.token)
	}

	fx.sessions.err = fmt.Errorf("%w: expired", identity.ErrInvalidToken)
	if rec := fx.do(http.MethodPost, "/api/v1/session", `{"access_token":"tok"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	fx.sessions.err = identity.ErrNoVerifier
	if rec := fx.do(http.MethodPost, "/api/v1/session", `{"access_token":"tok"}`); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	fx.sessions.err = errors.New("boom")
	if rec := fx.do(http.MethodPost, "/api/v1/session", `{}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", rec.Code)
	}

	if rec := fx.do(http.MethodDelete, "/api/v1/session", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !fx.sessions.signedOut {
		t.Fatalf("expected sign out")
	}
}

func TestLifecycleRoute(t *testing.T) {
	fx := newAPIFixture()

	if rec := fx.do(http.MethodPost, "/api/v1/lifecycle", `{"state":"background"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if rec := fx.do(http.MethodPost, "/api/v1/lifecycle", `{"state":"sleepy"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(fx.lifecycle.states) != 1 || fx.lifecycle.states[0] != ports.LifecycleBackground {
		t.Fatalf("unexpected lifecycle states: %#v", fx.lifecycle.states)
	}
}

func TestHealthReportsStats(t *testing.T) {
	fx := newAPIFixture()
	fx.activity.LogSearch("tofu")

	rec := fx.do(http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Status   string                 `json:"status"`
		Activity services.ActivityStats `json:"activity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body.Status != "ok" || body.Activity.Queued != 1 || !body.Activity.SignedIn {
		t.Fatalf("unexpected health body: %#v", body)
	}
}

type latencySourceFake []db.QueryLatency

func (f latencySourceFake) QueryLatencyStats() []db.QueryLatency { return f }

func TestHealthReportsDatabaseLatency(t *testing.T) {
	e := echo.New()
	latency := latencySourceFake{{Name: "AppendActivityEvents", Count: 2, Rows: 12, P95: 3 * time.Millisecond}}
	NewHealthRoutes(&activityLoggerFake{}, latency).RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Database []map[string]any `json:"database"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if len(body.Database) != 1 {
		t.Fatalf("expected one latency entry, got %#v", body.Database)
	}
	entry := body.Database[0]
	if entry["name"] != "AppendActivityEvents" || entry["avg_rows"] != float64(6) || entry["p95_ms"] != float64(3) {
		t.Fatalf("unexpected latency entry: %#v", entry)
	}
}

func TestHealthOmitsDatabaseWithoutSource(t *testing.T) {
	fx := newAPIFixture()
	rec := fx.do(http.MethodGet, "/healthz", "")
	if strings.Contains(rec.Body.String(), `"database"`) {
		t.Fatalf("expected no database section, got %s", rec.Body.String())
	}
}
