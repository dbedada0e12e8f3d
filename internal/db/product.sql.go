package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const getProduct = `
SELECT id, name, price_amount, price_currency, stock, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Stock,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertProduct = `
INSERT INTO products (id, name, price_amount, price_currency, stock)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
    SET name           = EXCLUDED.name,
        price_amount   = EXCLUDED.price_amount,
        price_currency = EXCLUDED.price_currency,
        stock          = EXCLUDED.stock,
        updated_at     = NOW()
`

type UpsertProductParams struct {
	ID            uuid.UUID
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int32
}

func (q *Queries) UpsertProduct(ctx context.Context, arg UpsertProductParams) error {
	_, err := q.db.Exec(ctx, upsertProduct,
		arg.ID,
		arg.Name,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Stock,
	)
	return err
}
