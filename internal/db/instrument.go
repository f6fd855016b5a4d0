package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fr0stylo/mise/internal/db/queries"
	"github.com/fr0stylo/mise/internal/observability"
)

const unknownQuery = "unknown"

// instrumentedDBTX traces and times the calls sqlc makes. PrepareContext is
// never used by the generated queries and passes straight through.
type instrumentedDBTX struct {
	queries.DBTX
	latency *latencyRecorder
}

func instrument(inner queries.DBTX, latency *latencyRecorder) queries.DBTX {
	if latency == nil {
		return inner
	}
	return &instrumentedDBTX{DBTX: inner, latency: latency}
}

func (d *instrumentedDBTX) begin(ctx context.Context, query, operation string) (context.Context, func(err error, rows int64)) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, name, operation)
	started := time.Now()
	return ctx, func(err error, rows int64) {
		d.latency.observe(name, time.Since(started), rows)
		span.RecordError(err)
		span.End()
	}
}

func (d *instrumentedDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, done := d.begin(ctx, query, "exec")
	result, err := d.DBTX.ExecContext(ctx, query, args...)
	var rows int64
	if err == nil {
		rows, _ = result.RowsAffected()
	}
	done(err, rows)
	return result, err
}

func (d *instrumentedDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, done := d.begin(ctx, query, "query")
	rows, err := d.DBTX.QueryContext(ctx, query, args...)
	done(err, 0)
	return rows, err
}

func (d *instrumentedDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, done := d.begin(ctx, query, "query_row")
	row := d.DBTX.QueryRowContext(ctx, query, args...)
	done(row.Err(), 0)
	return row
}

// queryName reads the sqlc "-- name: X :kind" header.
func queryName(query string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	rest, ok := strings.CutPrefix(strings.TrimSpace(first), "-- name:")
	if !ok {
		return unknownQuery
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return unknownQuery
	}
	return fields[0]
}
