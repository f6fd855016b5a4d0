package routes

import (
	"github.com/labstack/echo/v4"

	activitywebhook "github.com/fr0stylo/mise/internal/webhooks/activity"
	"github.com/fr0stylo/mise/pkg/eventpublisher"
)

// WebhookRoutes registers the activity collector endpoint.
type WebhookRoutes struct {
	activity *activitywebhook.Handler
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(handler *activitywebhook.Handler) *WebhookRoutes {
	return &WebhookRoutes{activity: handler}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST(eventpublisher.WebhookPath, w.handleActivityWebhook)
}

func (w *WebhookRoutes) handleActivityWebhook(c echo.Context) error {
	return w.activity.Handle(c.Response(), c.Request())
}
