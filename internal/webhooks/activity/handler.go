// Package activity receives signed activity batches published by remote devices.
package activity

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/fr0stylo/mise/internal/app/domain"
	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

const (
	// AuthorizationHeader contains the bearer token.
	AuthorizationHeader = "Authorization"
	// BearerPrefix prefixes the auth token.
	BearerPrefix    = "Bearer "
	maxPayloadBytes = 1 << 20
)

var errUnauthorized = errors.New("unauthorized")

// Handler validates collector deliveries and stores them through a sink.
type Handler struct {
	token  string
	secret string
	sink   ports.ActivitySink
	log    *slog.Logger

	limiter *rate.Limiter
}

// NewHandler constructs a collector handler.
func NewHandler(token, secret string, sink ports.ActivitySink, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		token:  strings.TrimSpace(token),
		secret: strings.TrimSpace(secret),
		sink:   sink,
		log:    log,
	}
}

// SetRateLimit caps accepted deliveries per second. A non-positive limit disables the cap.
func (h *Handler) SetRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 {
		h.limiter = nil
		return
	}
	h.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

// Handle validates and stores one delivery. Redelivered event ids are skipped by the store.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) error {
	if h.limiter != nil && !h.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many deliveries", http.StatusTooManyRequests)
		return nil
	}

	token, err := bearerToken(r.Header.Get(AuthorizationHeader))
	if err != nil || !h.validToken(token) {
		http.Error(w, "invalid auth token", http.StatusUnauthorized)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return nil
	}
	if !eventpublisher.Verify(body, h.secret, r.Header.Get(eventpublisher.SignatureHeader)) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return nil
	}

	events, err := eventpublisher.ParseBatchBody(body)
	if err != nil {
		h.log.WarnContext(r.Context(), "activity_delivery_rejected", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return nil
	}

	if err := h.store(r.Context(), events); err != nil {
		return err
	}

	h.log.DebugContext(r.Context(), "activity_delivery_stored", "batch_size", len(events))
	w.WriteHeader(http.StatusAccepted)
	return nil
}

func (h *Handler) store(ctx context.Context, events []eventpublisher.Event) error {
	batch := make([]ports.ActivityEvent, 0, len(events))
	for _, event := range events {
		batch = append(batch, ports.ActivityEvent{
			EventID:    event.ID,
			ActorID:    event.ActorID,
			Kind:       domain.ActivityKind(event.Kind),
			Payload:    event.Payload,
			OccurredAt: event.OccurredAt,
		})
	}
	return h.sink.InsertActivityEvents(ctx, batch)
}

func (h *Handler) validToken(token string) bool {
	if h.token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}

func bearerToken(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, BearerPrefix) {
		return "", errUnauthorized
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, BearerPrefix)), nil
}
