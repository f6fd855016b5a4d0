package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type recipeActivityPayload struct {
	RecipeID   string `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
}

type searchActivityPayload struct {
	Query string `json:"query"`
}

func (a *APIRoutes) handleRecipeActivity(logFn func(recipeID, recipeName string)) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := recipeActivityPayload{}
		if err := c.Bind(&payload); err != nil {
			return err
		}
		recipeID := strings.TrimSpace(payload.RecipeID)
		if recipeID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "recipe_id is required")
		}
		logFn(recipeID, strings.TrimSpace(payload.RecipeName))
		return c.NoContent(http.StatusAccepted)
	}
}

func (a *APIRoutes) handleSearch(c echo.Context) error {
	payload := searchActivityPayload{}
	if err := c.Bind(&payload); err != nil {
		return err
	}
	a.activity.LogSearch(payload.Query)
	return c.NoContent(http.StatusAccepted)
}

func (a *APIRoutes) handleFlush(c echo.Context) error {
	a.activity.Flush(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
