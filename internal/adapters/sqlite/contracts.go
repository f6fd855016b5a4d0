package sqlite

import (
	"context"

	"github.com/fr0stylo/mise/internal/db/queries"
)

type activityDatabase interface {
	AppendActivityEvents(ctx context.Context, rows []queries.InsertActivityEventParams) error
}
