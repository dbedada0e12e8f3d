package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

type unitOfWork struct {
	pool     *pgxpool.Pool
	currency currency.Unit
}

func NewUnitOfWork(pool *pgxpool.Pool, cur currency.Unit) port.UnitOfWork {
	return &unitOfWork{
		pool:     pool,
		currency: cur,
	}
}

// WithinTx hands fn repositories built on one transaction. Their own
// transactional methods run as savepoints inside it.
func (u *unitOfWork) WithinTx(ctx context.Context, fn func(carts port.CartRepository, orders port.OrderRepository) error) (txErr error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	if err := fn(NewCartWithTx(tx, u.currency), NewOrderWithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}
