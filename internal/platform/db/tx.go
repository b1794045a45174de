package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DBTxKey is the context key under which an open transaction is stored.
const DBTxKey contextKey = "db_tx"

// WithTx begins a transaction on the tenant-scoped connection carried by ctx
// and returns a derived context holding the transaction. Repositories that
// see a transaction in their context run their statements on it, so a service
// can group several repository calls into one atomic unit.
//
// The caller owns the returned pgx.Tx and must Commit or Rollback it.
func WithTx(ctx context.Context) (context.Context, pgx.Tx, error) {
	conn := ConnFromContext(ctx)
	if conn == nil {
		return ctx, nil, fmt.Errorf("no database connection in context")
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		return ctx, nil, fmt.Errorf("begin transaction: %w", err)
	}
	return context.WithValue(ctx, DBTxKey, tx), tx, nil
}

// TxFromContext returns the open transaction stored in ctx, or nil.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}
