package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/storefront/internal/db"
)

// conn is satisfied by *pgxpool.Pool and pgx.Tx. Begin on a pgx.Tx opens a
// savepoint, so repositories built with NewXWithTx nest inside the caller's transaction.
type conn interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx runs fn in a transaction, committing on success and rolling back on any error.
func withTx[T any](ctx context.Context, c conn, fn func(q *db.Queries) (T, error)) (_ T, txErr error) {
	var zero T

	tx, err := c.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("conn.Begin: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(db.New(tx))
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}

func nilSliceIfEmpty[T any](slice []T) []T {
	if len(slice) == 0 {
		return nil
	}
	return slice
}
