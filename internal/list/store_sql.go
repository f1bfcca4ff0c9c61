package list

import (
	"context"
	"database/sql"

	txcontext "cartlog/pkg/platform/tx"
)

// querier is the subset of *sql.DB / *sql.Tx the SQL stores need.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer returns the in-flight transaction from context when present, so
// every read and write inside a service call shares one consistent view.
func execer(ctx context.Context, db *sql.DB) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}
