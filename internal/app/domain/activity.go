package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// ActivityKind tags one user-activity event.
type ActivityKind string

const (
	// ActivityViewRecipe is emitted when a recipe detail screen is opened.
	ActivityViewRecipe ActivityKind = "view_recipe"
	// ActivityCookStart is emitted when guided cooking starts.
	ActivityCookStart ActivityKind = "cook_start"
	// ActivityCookComplete is emitted when guided cooking finishes.
	ActivityCookComplete ActivityKind = "cook_complete"
	// ActivitySearch is emitted for a submitted, non-empty search query.
	ActivitySearch ActivityKind = "search"
)

// Payload keys used by the built-in activity kinds.
const (
	PayloadRecipeID   = "recipe_id"
	PayloadRecipeName = "recipe_name"
	PayloadQuery      = "query"
)

// ActivityRecord is one immutable unit of queued analytics data.
type ActivityRecord struct {
	id         string
	kind       ActivityKind
	payload    map[string]any
	occurredAt time.Time
}

// NewActivityRecord builds a record stamped with occurredAt. The payload is copied.
func NewActivityRecord(kind ActivityKind, payload map[string]any, occurredAt time.Time) ActivityRecord {
	return ActivityRecord{
		id:         uuid.NewString(),
		kind:       kind,
		payload:    maps.Clone(payload),
		occurredAt: occurredAt.UTC(),
	}
}

// RecipePayload is the payload shared by recipe view and cook events.
func RecipePayload(recipeID, recipeName string) map[string]any {
	return map[string]any{
		PayloadRecipeID:   recipeID,
		PayloadRecipeName: recipeName,
	}
}

// SearchPayload is the payload of a search event. The query is expected trimmed.
func SearchPayload(query string) map[string]any {
	return map[string]any{PayloadQuery: query}
}

// ID is stable across flush retries so sinks can ignore replays.
func (r ActivityRecord) ID() string { return r.id }

func (r ActivityRecord) Kind() ActivityKind { return r.kind }

func (r ActivityRecord) OccurredAt() time.Time { return r.occurredAt }

// Payload returns a copy of the record payload.
func (r ActivityRecord) Payload() map[string]any {
	return maps.Clone(r.payload)
}
