package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
}
