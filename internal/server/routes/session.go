package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/mise/internal/identity"
)

type sessionPayload struct {
	AccessToken string `json:"access_token"`
}

func (a *APIRoutes) handleSignIn(c echo.Context) error {
	payload := sessionPayload{}
	if err := c.Bind(&payload); err != nil {
		return err
	}
	token := strings.TrimSpace(payload.AccessToken)
	if token == "" {
		token = strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "access token is required")
	}

	if _, err := a.sessions.SignInWithToken(token); err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrEmptyActor):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		case errors.Is(err, identity.ErrNoVerifier):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "token sign-in is not configured")
		default:
			return err
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *APIRoutes) handleSignOut(c echo.Context) error {
	a.sessions.SignOut()
	return c.NoContent(http.StatusNoContent)
}
