package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/mise/internal/lifecycle"
)

type lifecyclePayload struct {
	State string `json:"state"`
}

func (a *APIRoutes) handleLifecycle(c echo.Context) error {
	payload := lifecyclePayload{}
	if err := c.Bind(&payload); err != nil {
		return err
	}
	state, err := lifecycle.ParseState(payload.State)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown lifecycle state")
	}
	a.lifecycle.Notify(state)
	return c.NoContent(http.StatusAccepted)
}
