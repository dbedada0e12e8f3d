package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/telemetry"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 3

type OrderItemRequest struct {
	ProductID   uuid.UUID
	ProductName string
	Price       domain.Money
	Quantity    int
}

type OrderDetails struct {
	ShippingAddress string
	BillingAddress  string
	Phone           string
	Notes           string
}

// CreateOrderRequest carries the caller's line items and price breakdown.
// Subtotal and TotalAmount are optional hints; both are recomputed from the items.
type CreateOrderRequest struct {
	Items        []OrderItemRequest
	Details      OrderDetails
	Subtotal     *decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	TotalAmount  *decimal.Decimal
}

type CheckoutRequest struct {
	Details      OrderDetails
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
}

type OrderService struct {
	orders  port.OrderRepository
	uow     port.UnitOfWork
	events  port.EventPublisher
	metrics *telemetry.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrderService builds the service. events may be nil, in which case no
// order events are published.
func NewOrderService(orders port.OrderRepository, uow port.UnitOfWork, events port.EventPublisher, metrics *telemetry.Metrics, l *zap.Logger) *OrderService {
	return &OrderService{
		orders:  orders,
		uow:     uow,
		events:  events,
		metrics: metrics,
		logger:  l,
		now:     time.Now,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, user domain.User, req CreateOrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}

	items := lo.Map(req.Items, func(item OrderItemRequest, _ int) domain.OrderItem {
		return domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	})

	order, err := s.newOrder(user, items, req.Details, req.Tax, req.ShippingCost)
	if err != nil {
		return domain.Order{}, err
	}

	s.checkHint(ctx, "subtotal", req.Subtotal, order.Subtotal)
	s.checkHint(ctx, "total_amount", req.TotalAmount, order.TotalAmount)

	orderID, err := s.insertOrder(ctx, s.orders, order)
	if err != nil {
		return domain.Order{}, err
	}

	return s.created(ctx, orderID)
}

// Checkout turns the user's cart into an order and empties the cart in the
// same transaction.
func (s *OrderService) Checkout(ctx context.Context, user domain.User, req CheckoutRequest) (domain.Order, error) {
	var orderID uuid.UUID

	err := s.uow.WithinTx(ctx, func(carts port.CartRepository, orders port.OrderRepository) error {
		var order domain.Order

		_, err := carts.UpdateCart(ctx, user.ID, func(cart *domain.Cart) error {
			if len(cart.Items) == 0 {
				return domain.ErrEmptyOrder
			}

			var err error
			order, err = s.newOrder(user, domain.OrderItemsFromCart(*cart), req.Details, req.Tax, req.ShippingCost)
			if err != nil {
				return err
			}

			cart.Clear()
			return nil
		})
		if err != nil {
			return fmt.Errorf("carts.UpdateCart: %w", err)
		}

		orderID, err = s.insertOrder(ctx, orders, order)
		return err
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("uow.WithinTx: %w", err)
	}

	return s.created(ctx, orderID)
}

// GetOrders lists orders newest first. An empty ownerID lists every order.
func (s *OrderService) GetOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	var filter domain.OrderFilter
	if ownerID != "" {
		filter.OwnerIDs = []string{ownerID}
	}

	orders, err := s.orders.SearchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return order, nil
}

func (s *OrderService) GetOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	orderStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.SearchOrders(ctx, domain.OrderFilter{
		Statuses: []domain.OrderStatus{orderStatus},
	})
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}

// UpdateOrderStatus moves the order to any of the known statuses, regardless of its current one.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (domain.Order, error) {
	orderStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return domain.Order{}, err
	}

	order, previous, err := s.orders.UpdateOrderStatus(ctx, orderID, orderStatus)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.UpdateOrderStatus: %w", err)
	}

	s.metrics.OrderStatusChanged(ctx, string(orderStatus))
	logger.Info(ctx, s.logger, "order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)

	if s.events != nil {
		if err := s.events.PublishOrderStatusChanged(ctx, order, previous); err != nil {
			logger.Error(ctx, s.logger, "failed to publish order status changed event",
				zap.Stringer("order_id", order.ID), zap.Error(err))
		}
	}

	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return fmt.Errorf("orders.DeleteOrder: %w", err)
	}

	logger.Info(ctx, s.logger, "order deleted", zap.Stringer("order_id", orderID))

	return nil
}

func (s *OrderService) GetOrderStats(ctx context.Context) (domain.OrderStats, error) {
	stats, err := s.orders.GetOrderStats(ctx)
	if err != nil {
		return domain.OrderStats{}, fmt.Errorf("orders.GetOrderStats: %w", err)
	}

	return stats, nil
}

func (s *OrderService) newOrder(user domain.User, items []domain.OrderItem, details OrderDetails, tax, shipping decimal.Decimal) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}

	cur := items[0].Price.Currency

	order := domain.Order{
		OwnerID:         user.ID,
		Status:          domain.OrderStatusPending,
		Items:           items,
		Tax:             domain.Money{Amount: tax, Currency: cur},
		ShippingCost:    domain.Money{Amount: shipping, Currency: cur},
		ShippingAddress: details.ShippingAddress,
		BillingAddress:  details.BillingAddress,
		Phone:           details.Phone,
		Notes:           details.Notes,
	}

	if err := order.CalculateTotals(); err != nil {
		return domain.Order{}, fmt.Errorf("order.CalculateTotals: %w", err)
	}

	return order, nil
}

// insertOrder assigns a fresh order number and retries when it collides with an existing one.
func (s *OrderService) insertOrder(ctx context.Context, orders port.OrderRepository, order domain.Order) (uuid.UUID, error) {
	var lastErr error

	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = domain.NewOrderNumber(s.now())

		orderID, err := orders.InsertOrder(ctx, order)
		if err == nil {
			return orderID, nil
		}

		if !errors.Is(err, domain.ErrOrderNumberConflict) {
			return uuid.Nil, fmt.Errorf("orders.InsertOrder: %w", err)
		}

		lastErr = err
		logger.Warn(ctx, s.logger, "order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
	}

	return uuid.Nil, fmt.Errorf("orders.InsertOrder after %d attempts: %w", maxOrderNumberAttempts, lastErr)
}

func (s *OrderService) created(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	s.metrics.OrderCreated(ctx)
	logger.Info(ctx, s.logger, "order created",
		zap.Stringer("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("owner_id", order.OwnerID),
		zap.Stringer("total_amount", order.TotalAmount),
	)

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			logger.Error(ctx, s.logger, "failed to publish order created event",
				zap.Stringer("order_id", order.ID), zap.Error(err))
		}
	}

	return order, nil
}

func (s *OrderService) checkHint(ctx context.Context, field string, hint *decimal.Decimal, computed domain.Money) {
	if hint == nil || hint.Equal(computed.Amount) {
		return
	}

	logger.Warn(ctx, s.logger, "client price breakdown differs from computed",
		zap.String("field", field),
		zap.String("client", hint.String()),
		zap.String("computed", computed.Amount.String()),
	)
}
