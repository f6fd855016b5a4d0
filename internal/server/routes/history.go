package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/mise/internal/db/queries"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ActivityHistory reads activity stored by the local sink.
type ActivityHistory interface {
	ListActivityEventsByActor(ctx context.Context, actorID string, limit int64) ([]queries.ActivityEvent, error)
	CountActivityEventsByKind(ctx context.Context, actorID string) (map[string]int64, error)
}

// IdentityReader resolves the signed-in actor.
type IdentityReader interface {
	CurrentIdentity(ctx context.Context) (string, error)
}

// HistoryRoutes exposes the signed-in actor's stored activity.
type HistoryRoutes struct {
	history    ActivityHistory
	identities IdentityReader
}

// NewHistoryRoutes constructs history routes.
func NewHistoryRoutes(history ActivityHistory, identities IdentityReader) *HistoryRoutes {
	return &HistoryRoutes{history: history, identities: identities}
}

// RegisterRoutes registers history endpoints.
func (h *HistoryRoutes) RegisterRoutes(s *echo.Echo) {
	api := s.Group("/api/v1/activity")
	api.GET("/history", h.handleHistory)
	api.GET("/summary", h.handleSummary)
}

type historyEntry struct {
	EventID    string          `json:"event_id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt string          `json:"occurred_at"`
}

func (h *HistoryRoutes) handleHistory(c echo.Context) error {
	actorID, err := h.signedInActor(c)
	if err != nil {
		return err
	}

	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(parsed, maxHistoryLimit)
	}

	rows, err := h.history.ListActivityEventsByActor(c.Request().Context(), actorID, int64(limit))
	if err != nil {
		return err
	}
	out := make([]historyEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, historyEntry{
			EventID:    row.EventID,
			Kind:       row.Kind,
			Payload:    json.RawMessage(row.PayloadJson),
			OccurredAt: row.OccurredAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *HistoryRoutes) handleSummary(c echo.Context) error {
	actorID, err := h.signedInActor(c)
	if err != nil {
		return err
	}
	counts, err := h.history.CountActivityEventsByKind(c.Request().Context(), actorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}

func (h *HistoryRoutes) signedInActor(c echo.Context) (string, error) {
	actorID, err := h.identities.CurrentIdentity(c.Request().Context())
	if err != nil {
		return "", err
	}
	if actorID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
	}
	return actorID, nil
}
