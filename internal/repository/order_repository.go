package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	uniqueViolationCode       = "23505"
	orderNumberConstraintName = "orders_order_number_key"
)

type orderRepository struct {
	conn conn
	q    *db.Queries
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{
		conn: pool,
		q:    db.New(pool),
	}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{
		conn: tx,
		q:    db.New(tx),
	}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := withTx(ctx, r.conn, func(q *db.Queries) (domain.Order, error) {
		return loadOrder(ctx, q, orderID)
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	orders, err := withTx(ctx, r.conn, func(q *db.Queries) ([]domain.Order, error) {
		dbOrders, err := q.SearchOrders(ctx, mapDomainOrderFilterToDBFilter(filter))
		if err != nil {
			return nil, fmt.Errorf("q.SearchOrders: %w", err)
		}

		if len(dbOrders) == 0 {
			return nil, nil
		}

		orderIDs := lo.Map(dbOrders, func(o db.Order, _ int) uuid.UUID {
			return o.ID
		})

		dbOrderItems, err := q.GetOrderItemsByOrderIDs(ctx, orderIDs)
		if err != nil {
			return nil, fmt.Errorf("q.GetOrderItemsByOrderIDs: %w", err)
		}

		itemsByOrder := lo.GroupBy(dbOrderItems, func(item db.OrderItem) uuid.UUID {
			return item.OrderID
		})

		result := make([]domain.Order, 0, len(dbOrders))
		for _, dbOrder := range dbOrders {
			order, err := mapDBOrderToDomain(dbOrder, itemsByOrder[dbOrder.ID])
			if err != nil {
				return nil, fmt.Errorf("mapDBOrderToDomain: %w", err)
			}
			result = append(result, order)
		}

		return result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("withTx: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 {
		return uuid.Nil, domain.ErrEmptyOrder
	}

	if order.OrderNumber == "" {
		return uuid.Nil, fmt.Errorf("order number is empty")
	}

	orderID, err := withTx(ctx, r.conn, func(q *db.Queries) (uuid.UUID, error) {
		orderID, err := q.InsertOrder(ctx, db.InsertOrderParams{
			OrderNumber:     order.OrderNumber,
			OwnerID:         order.OwnerID,
			Status:          string(order.Status),
			Currency:        order.Currency().String(),
			Subtotal:        order.Subtotal.Amount,
			Tax:             order.Tax.Amount,
			ShippingCost:    order.ShippingCost.Amount,
			TotalAmount:     order.TotalAmount.Amount,
			ShippingAddress: order.ShippingAddress,
			BillingAddress:  order.BillingAddress,
			Phone:           order.Phone,
			Notes:           order.Notes,
		})
		if err != nil {
			if isOrderNumberConflict(err) {
				return uuid.Nil, fmt.Errorf("q.InsertOrder[%s]: %w", order.OrderNumber, domain.ErrOrderNumberConflict)
			}
			return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", err)
		}

		for _, item := range order.Items {
			arg := db.InsertOrderItemParams{
				OrderID:       orderID,
				ProductID:     item.ProductID,
				ProductName:   item.ProductName,
				PriceAmount:   item.Price.Amount,
				PriceCurrency: item.Price.Currency.String(),
				Quantity:      int32(item.Quantity),
				TotalPrice:    item.TotalPrice.Amount,
			}
			if err := q.InsertOrderItem(ctx, arg); err != nil {
				return uuid.Nil, fmt.Errorf("q.InsertOrderItem: %w", err)
			}
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

// UpdateOrderStatus sets the status under a row lock and returns the updated
// order together with the status it replaced.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, domain.OrderStatus, error) {
	type result struct {
		order    domain.Order
		previous domain.OrderStatus
	}

	if _, err := domain.ToOrderStatus(string(status)); err != nil {
		return domain.Order{}, "", err
	}

	res, err := withTx(ctx, r.conn, func(q *db.Queries) (result, error) {
		var res result

		previous, err := q.UpdateOrderStatus(ctx, db.UpdateOrderStatusParams{
			ID:     orderID,
			Status: string(status),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return res, fmt.Errorf("q.UpdateOrderStatus: %w", domain.ErrOrderNotFound)
			}
			return res, fmt.Errorf("q.UpdateOrderStatus: %w", err)
		}

		res.previous, err = domain.ToOrderStatus(previous)
		if err != nil {
			return res, fmt.Errorf("domain.ToOrderStatus[%s]: %w", previous, err)
		}

		res.order, err = loadOrder(ctx, q, orderID)
		if err != nil {
			return res, err
		}

		return res, nil
	})
	if err != nil {
		return domain.Order{}, "", fmt.Errorf("withTx: %w", err)
	}

	return res.order, res.previous, nil
}

// DeleteOrder removes the order; its items go with it through the foreign key cascade.
func (r *orderRepository) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}

	rowsAffected, err := r.q.DeleteOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("q.DeleteOrder: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("q.DeleteOrder: %w", domain.ErrOrderNotFound)
	}

	return nil
}

func (r *orderRepository) GetOrderStats(ctx context.Context) (domain.OrderStats, error) {
	revenueStatuses := lo.Map(domain.RevenueStatuses(), func(s domain.OrderStatus, _ int) string {
		return string(s)
	})

	row, err := r.q.GetOrderStats(ctx, revenueStatuses)
	if err != nil {
		return domain.OrderStats{}, fmt.Errorf("q.GetOrderStats: %w", err)
	}

	return domain.OrderStats{
		TotalOrders:     row.TotalOrders,
		PendingOrders:   row.PendingOrders,
		CompletedOrders: row.CompletedOrders,
		TotalRevenue:    row.TotalRevenue,
	}, nil
}

func loadOrder(ctx context.Context, q *db.Queries, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	dbOrder, err := q.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("q.GetOrder: %w", domain.ErrOrderNotFound)
		}
		return o, fmt.Errorf("q.GetOrder: %w", err)
	}

	dbOrderItems, err := q.GetOrderItems(ctx, orderID)
	if err != nil {
		return o, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	order, err := mapDBOrderToDomain(dbOrder, dbOrderItems)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return order, nil
}

func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == orderNumberConstraintName
}

func mapDomainOrderFilterToDBFilter(filter domain.OrderFilter) db.SearchOrdersParams {
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string {
		return string(s)
	})

	var createdAfter, createdBefore, updatedAfter, updatedBefore *time.Time

	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	if filter.UpdatedAt != nil {
		updatedAfter = filter.UpdatedAt.After
		updatedBefore = filter.UpdatedAt.Before
	}

	return db.SearchOrdersParams{
		Ids:           nilSliceIfEmpty(filter.IDs),
		OwnerIds:      nilSliceIfEmpty(filter.OwnerIDs),
		Statuses:      nilSliceIfEmpty(statuses),
		CreatedAfter:  createdAfter,
		CreatedBefore: createdBefore,
		UpdatedAfter:  updatedAfter,
		UpdatedBefore: updatedBefore,
	}
}

func mapDBOrderItemToDomain(row db.OrderItem) (domain.OrderItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.OrderItem{
		ProductID:   row.ProductID,
		ProductName: row.ProductName,
		Price:       domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Quantity:    int(row.Quantity),
		TotalPrice:  domain.Money{Amount: row.TotalPrice, Currency: parsedCurrency},
		CreatedAt:   row.CreatedAt,
	}, nil
}

func mapDBOrderItemsToDomain(rows []db.OrderItem) ([]domain.OrderItem, error) {
	var items []domain.OrderItem

	for _, row := range rows {
		item, err := mapDBOrderItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderItemToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}

func mapDBOrderToDomain(dbOrder db.Order, dbOrderItems []db.OrderItem) (domain.Order, error) {
	var o domain.Order

	items, err := mapDBOrderItemsToDomain(dbOrderItems)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderItemsToDomain: %w", err)
	}

	status, err := domain.ToOrderStatus(dbOrder.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", dbOrder.Status, err)
	}

	parsedCurrency, err := currency.ParseISO(dbOrder.Currency)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", dbOrder.Currency, err)
	}

	money := func(amount decimal.Decimal) domain.Money {
		return domain.Money{Amount: amount, Currency: parsedCurrency}
	}

	return domain.Order{
		ID:              dbOrder.ID,
		OrderNumber:     dbOrder.OrderNumber,
		OwnerID:         dbOrder.OwnerID,
		Status:          status,
		Subtotal:        money(dbOrder.Subtotal),
		Tax:             money(dbOrder.Tax),
		ShippingCost:    money(dbOrder.ShippingCost),
		TotalAmount:     money(dbOrder.TotalAmount),
		Items:           items,
		ShippingAddress: dbOrder.ShippingAddress,
		BillingAddress:  dbOrder.BillingAddress,
		Phone:           dbOrder.Phone,
		Notes:           dbOrder.Notes,
		CreatedAt:       dbOrder.CreatedAt,
		UpdatedAt:       dbOrder.UpdatedAt,
	}, nil
}
