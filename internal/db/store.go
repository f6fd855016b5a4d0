package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fr0stylo/mise/internal/db/queries"
)

// appendBatchOperation labels whole-transaction samples of AppendActivityEvents.
const appendBatchOperation = "AppendActivityEvents"

// ErrEmptyBatch indicates an append without rows.
var ErrEmptyBatch = errors.New("db: empty activity batch")

// AppendActivityEvents stores rows in one transaction. Rows whose event_id is
// already stored are skipped, so retried batches do not duplicate.
func (c *Database) AppendActivityEvents(ctx context.Context, rows []queries.InsertActivityEventParams) error {
	if len(rows) == 0 {
		return ErrEmptyBatch
	}
	started := time.Now()
	err := c.WithTx(ctx, func(q *queries.Queries) error {
		for _, row := range rows {
			if err := q.InsertActivityEvent(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		c.latency.observe(appendBatchOperation, time.Since(started), int64(len(rows)))
	}
	return err
}

// ListActivityEventsByActor returns the oldest limit events recorded for an actor.
func (c *Database) ListActivityEventsByActor(ctx context.Context, actorID string, limit int64) ([]queries.ActivityEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	return c.Queries.ListActivityEventsByActor(ctx, queries.ListActivityEventsByActorParams{ActorID: actorID, Limit: limit})
}

// CountActivityEventsByKind returns per-kind totals for an actor.
func (c *Database) CountActivityEventsByKind(ctx context.Context, actorID string) (map[string]int64, error) {
	rows, err := c.Queries.CountActivityEventsByKind(ctx, actorID)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int64, len(rows))
	for _, row := range rows {
		totals[row.Kind] = row.Total
	}
	return totals, nil
}

// WithTx runs a function within a transaction.
func (c *Database) WithTx(ctx context.Context, fn func(*queries.Queries) error) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(queries.New(instrument(tx, c.latency))); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}
		return err
	}
	return tx.Commit()
}
