package routes

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/mise/internal/app/ports"
	"github.com/fr0stylo/mise/internal/app/services"
)

// ActivityLogger is the part of the activity tracker the app shell drives.
type ActivityLogger interface {
	LogRecipeView(recipeID, recipeName string)
	LogCookStart(recipeID, recipeName string)
	LogCookComplete(recipeID, recipeName string)
	LogSearch(query string)
	Flush(ctx context.Context)
	Stats() services.ActivityStats
}

// SessionManager signs the device actor in and out.
type SessionManager interface {
	SignInWithToken(token string) (string, error)
	SignOut()
}

// LifecycleNotifier receives host lifecycle transitions.
type LifecycleNotifier interface {
	Notify(state ports.LifecycleState)
}

// APIRoutes registers the local app-shell API.
type APIRoutes struct {
	activity  ActivityLogger
	sessions  SessionManager
	lifecycle LifecycleNotifier
}

// NewAPIRoutes constructs API routes.
func NewAPIRoutes(activity ActivityLogger, sessions SessionManager, lifecycle LifecycleNotifier) *APIRoutes {
	return &APIRoutes{activity: activity, sessions: sessions, lifecycle: lifecycle}
}

// RegisterRoutes registers API endpoints.
func (a *APIRoutes) RegisterRoutes(s *echo.Echo) {
	api := s.Group("/api/v1")

	api.POST("/session", a.handleSignIn)
	api.DELETE("/session", a.handleSignOut)

	api.POST("/activity/recipe-view", a.handleRecipeActivity(a.activity.LogRecipeView))
	api.POST("/activity/cook-start", a.handleRecipeActivity(a.activity.LogCookStart))
	api.POST("/activity/cook-complete", a.handleRecipeActivity(a.activity.LogCookComplete))
	api.POST("/activity/search", a.handleSearch)
	api.POST("/activity/flush", a.handleFlush)

	api.POST("/lifecycle", a.handleLifecycle)
}
