package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, order_number, owner_id, status, currency, subtotal, tax, shipping_cost, total_amount,
       shipping_address, billing_address, phone, notes, created_at, updated_at`

const insertOrder = `
INSERT INTO orders (order_number, owner_id, status, currency, subtotal, tax, shipping_cost, total_amount,
                    shipping_address, billing_address, phone, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id
`

type InsertOrderParams struct {
	OrderNumber     string
	OwnerID         string
	Status          string
	Currency        string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	ShippingCost    decimal.Decimal
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	Phone           string
	Notes           string
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.OrderNumber,
		arg.OwnerID,
		arg.Status,
		arg.Currency,
		arg.Subtotal,
		arg.Tax,
		arg.ShippingCost,
		arg.TotalAmount,
		arg.ShippingAddress,
		arg.BillingAddress,
		arg.Phone,
		arg.Notes,
	)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const insertOrderItem = `
INSERT INTO order_items (order_id, product_id, product_name, price_amount, price_currency, quantity, total_price)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type InsertOrderItemParams struct {
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Quantity      int32
	TotalPrice    decimal.Decimal
}

func (q *Queries) InsertOrderItem(ctx context.Context, arg InsertOrderItemParams) error {
	_, err := q.db.Exec(ctx, insertOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.ProductName,
		arg.PriceAmount,
		arg.PriceCurrency,
		arg.Quantity,
		arg.TotalPrice,
	)
	return err
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const searchOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($1::uuid[] IS NULL OR id = ANY ($1::uuid[]))
  AND ($2::text[] IS NULL OR owner_id = ANY ($2::text[]))
  AND ($3::text[] IS NULL OR status = ANY ($3::text[]))
  AND ($4::timestamptz IS NULL OR created_at >= $4::timestamptz)
  AND ($5::timestamptz IS NULL OR created_at <= $5::timestamptz)
  AND ($6::timestamptz IS NULL OR updated_at >= $6::timestamptz)
  AND ($7::timestamptz IS NULL OR updated_at <= $7::timestamptz)
ORDER BY created_at DESC, order_number DESC
`

type SearchOrdersParams struct {
	Ids           []uuid.UUID
	OwnerIds      []string
	Statuses      []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}

func (q *Queries) SearchOrders(ctx context.Context, arg SearchOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, searchOrders,
		arg.Ids,
		arg.OwnerIds,
		arg.Statuses,
		arg.CreatedAfter,
		arg.CreatedBefore,
		arg.UpdatedAfter,
		arg.UpdatedBefore,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanOrder(row interface{ Scan(dest ...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.OwnerID,
		&i.Status,
		&i.Currency,
		&i.Subtotal,
		&i.Tax,
		&i.ShippingCost,
		&i.TotalAmount,
		&i.ShippingAddress,
		&i.BillingAddress,
		&i.Phone,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOrderItemsByOrderIDs = `
SELECT id, order_id, product_id, product_name, price_amount, price_currency, quantity, total_price, created_at
FROM order_items
WHERE order_id = ANY ($1::uuid[])
ORDER BY order_id, created_at, id
`

func (q *Queries) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	return q.GetOrderItemsByOrderIDs(ctx, []uuid.UUID{orderID})
}

func (q *Queries) GetOrderItemsByOrderIDs(ctx context.Context, orderIds []uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItemsByOrderIDs, orderIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.ProductName,
			&i.PriceAmount,
			&i.PriceCurrency,
			&i.Quantity,
			&i.TotalPrice,
			&i.CreatedAt,
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

const updateOrderStatus = `
WITH previous AS (
    SELECT id, status
    FROM orders
    WHERE id = $1
    FOR UPDATE
)
UPDATE orders o
SET status     = $2,
    updated_at = clock_timestamp()
FROM previous
WHERE o.id = previous.id
RETURNING previous.status
`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

// UpdateOrderStatus returns the status the order had before the update.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (string, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status)
	var previous string
	err := row.Scan(&previous)
	return previous, err
}

const deleteOrder = `
DELETE FROM orders
WHERE id = $1
`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOrder, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getOrderStats = `
SELECT COUNT(*)                                                  AS total_orders,
       COUNT(*) FILTER (WHERE status = 'pending')                AS pending_orders,
       COUNT(*) FILTER (WHERE status = 'delivered')              AS completed_orders,
       COALESCE(SUM(total_amount) FILTER (WHERE status = ANY ($1::text[])), 0)::NUMERIC AS total_revenue
FROM orders
`

type GetOrderStatsRow struct {
	TotalOrders     int64
	PendingOrders   int64
	CompletedOrders int64
	TotalRevenue    decimal.Decimal
}

func (q *Queries) GetOrderStats(ctx context.Context, revenueStatuses []string) (GetOrderStatsRow, error) {
	row := q.db.QueryRow(ctx, getOrderStats, revenueStatuses)
	var i GetOrderStatsRow
	err := row.Scan(
		&i.TotalOrders,
		&i.PendingOrders,
		&i.CompletedOrders,
		&i.TotalRevenue,
	)
	return i, err
}
