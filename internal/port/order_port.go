package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)

	// SearchOrders returns matching orders newest first.
	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	// UpdateOrderStatus atomically sets the status and returns the updated order
	// along with the status it replaced.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, domain.OrderStatus, error)

	DeleteOrder(ctx context.Context, orderID uuid.UUID) error

	GetOrderStats(ctx context.Context) (domain.OrderStats, error)
}
