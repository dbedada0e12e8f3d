package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type fakeProducts struct {
	products map[uuid.UUID]domain.Product
}

func (f *fakeProducts) GetProduct(_ context.Context, productID uuid.UUID) (domain.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

type fakeCarts struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]domain.Cart{}}
}

func (f *fakeCarts) getOrCreate(ownerID string) domain.Cart {
	cart, ok := f.carts[ownerID]
	if !ok {
		cart = domain.Cart{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			Currency:    currency.USD,
			TotalAmount: domain.ZeroMoney(currency.USD),
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		f.carts[ownerID] = cart
	}
	return cart
}

func (f *fakeCarts) GetOrCreateCart(_ context.Context, ownerID string) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return cloneCart(f.getOrCreate(ownerID)), nil
}

func (f *fakeCarts) UpdateCart(_ context.Context, ownerID string, fn port.CartMutation) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart := cloneCart(f.getOrCreate(ownerID))
	if err := fn(&cart); err != nil {
		return domain.Cart{}, err
	}
	if err := cart.Recalculate(); err != nil {
		return domain.Cart{}, err
	}

	f.carts[ownerID] = cart
	return cloneCart(cart), nil
}

func cloneCart(cart domain.Cart) domain.Cart {
	cart.Items = slices.Clone(cart.Items)
	return cart
}

type fakeOrders struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]domain.Order
	sequence  []uuid.UUID
	conflicts int
	numbers   []string
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[uuid.UUID]domain.Order{}}
}

func (f *fakeOrders) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// SearchOrders supports the owner and status predicates, newest first.
func (f *fakeOrders) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []domain.Order
	for i := len(f.sequence) - 1; i >= 0; i-- {
		order, ok := f.orders[f.sequence[i]]
		if !ok {
			continue
		}
		if len(filter.OwnerIDs) > 0 && !slices.Contains(filter.OwnerIDs, order.OwnerID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		result = append(result, order)
	}
	return result, nil
}

func (f *fakeOrders) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.numbers = append(f.numbers, order.OrderNumber)

	if f.conflicts > 0 {
		f.conflicts--
		return uuid.Nil, domain.ErrOrderNumberConflict
	}

	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	order.Items = slices.Clone(order.Items)

	f.orders[order.ID] = order
	f.sequence = append(f.sequence, order.ID)

	return order.ID, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, domain.OrderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, "", domain.ErrOrderNotFound
	}
	previous := order.Status
	order.Status = status
	order.UpdatedAt = time.Now()
	f.orders[orderID] = order
	return order, previous, nil
}

func (f *fakeOrders) DeleteOrder(_ context.Context, orderID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.orders[orderID]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(f.orders, orderID)
	return nil
}

func (f *fakeOrders) GetOrderStats(_ context.Context) (domain.OrderStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := domain.OrderStats{TotalRevenue: decimal.Zero}
	for _, order := range f.orders {
		stats.TotalOrders++
		switch order.Status {
		case domain.OrderStatusPending:
			stats.PendingOrders++
		case domain.OrderStatusDelivered:
			stats.CompletedOrders++
		}
		if slices.Contains(domain.RevenueStatuses(), order.Status) {
			stats.TotalRevenue = stats.TotalRevenue.Add(order.TotalAmount.Amount)
		}
	}
	return stats, nil
}

type fakeUnitOfWork struct {
	carts  port.CartRepository
	orders port.OrderRepository
}

func (f *fakeUnitOfWork) WithinTx(_ context.Context, fn func(carts port.CartRepository, orders port.OrderRepository) error) error {
	return fn(f.carts, f.orders)
}

type publishedEvent struct {
	kind     string
	order    domain.Order
	previous domain.OrderStatus
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakeEvents) PublishOrderCreated(_ context.Context, order domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, publishedEvent{kind: "created", order: order})
	return f.err
}

func (f *fakeEvents) PublishOrderStatusChanged(_ context.Context, order domain.Order, previous domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, publishedEvent{kind: "status_changed", order: order, previous: previous})
	return f.err
}
