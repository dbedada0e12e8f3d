package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, order domain.Order, previous domain.OrderStatus) error
}
