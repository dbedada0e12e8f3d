package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ensureCart = `
INSERT INTO carts (owner_id, currency)
VALUES ($1, $2)
ON CONFLICT (owner_id) DO NOTHING
`

type EnsureCartParams struct {
	OwnerID  string
	Currency string
}

func (q *Queries) EnsureCart(ctx context.Context, arg EnsureCartParams) error {
	_, err := q.db.Exec(ctx, ensureCart, arg.OwnerID, arg.Currency)
	return err
}

const getCartByOwner = `
SELECT id, owner_id, currency, total_amount, total_items, created_at, updated_at
FROM carts
WHERE owner_id = $1
`

func (q *Queries) GetCartByOwner(ctx context.Context, ownerID string) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartByOwner, ownerID)
	return scanCart(row)
}

const getCartByOwnerForUpdate = getCartByOwner + `FOR UPDATE
`

// GetCartByOwnerForUpdate locks the cart row until the surrounding transaction ends.
func (q *Queries) GetCartByOwnerForUpdate(ctx context.Context, ownerID string) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartByOwnerForUpdate, ownerID)
	return scanCart(row)
}

func scanCart(row interface{ Scan(dest ...any) error }) (Cart, error) {
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Currency,
		&i.TotalAmount,
		&i.TotalItems,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCartItems = `
SELECT id, cart_id, product_id, product_name, price_amount, price_currency, quantity, total_price, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at, id
`

func (q *Queries) GetCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.Query(ctx, getCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var i CartItem
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.ProductID,
			&i.ProductName,
			&i.PriceAmount,
			&i.PriceCurrency,
			&i.Quantity,
			&i.TotalPrice,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertCartItem = `
INSERT INTO cart_items (id, cart_id, product_id, product_name, price_amount, price_currency, quantity, total_price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
    SET quantity    = EXCLUDED.quantity,
        total_price = EXCLUDED.total_price,
        updated_at  = NOW()
WHERE cart_items.quantity <> EXCLUDED.quantity
`

type UpsertCartItemParams struct {
	ID            uuid.UUID
	CartID        uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Quantity      int32
	TotalPrice    decimal.Decimal
}

func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) error {
	_, err := q.db.Exec(ctx, upsertCartItem,
		arg.ID,
		arg.CartID,
		arg.ProductID,
		arg.ProductName,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Quantity,
		arg.TotalPrice,
	)
	return err
}

// KeepIds must be non-nil: a NULL array makes the predicate NULL and no rows are deleted.
const deleteCartItemsNotIn = `
DELETE FROM cart_items
WHERE cart_id = $1
  AND NOT (id = ANY ($2::uuid[]))
`

type DeleteCartItemsNotInParams struct {
	CartID  uuid.UUID
	KeepIds []uuid.UUID
}

func (q *Queries) DeleteCartItemsNotIn(ctx context.Context, arg DeleteCartItemsNotInParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItemsNotIn, arg.CartID, arg.KeepIds)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateCartTotals = `
UPDATE carts
SET total_amount = $2,
    total_items  = $3,
    updated_at   = NOW()
WHERE id = $1
RETURNING updated_at
`

type UpdateCartTotalsParams struct {
	ID          uuid.UUID
	TotalAmount decimal.Decimal
	TotalItems  int32
}

func (q *Queries) UpdateCartTotals(ctx context.Context, arg UpdateCartTotalsParams) (time.Time, error) {
	row := q.db.QueryRow(ctx, updateCartTotals, arg.ID, arg.TotalAmount, arg.TotalItems)
	var updatedAt time.Time
	err := row.Scan(&updatedAt)
	return updatedAt, err
}
