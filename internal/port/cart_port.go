package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// CartMutation changes a loaded cart in place. Returning an error aborts the
// mutation and leaves the stored cart untouched.
type CartMutation func(cart *domain.Cart) error

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, ownerID string) (domain.Cart, error)

	// UpdateCart applies fn to the owner's cart, persists the resulting line
	// items and recomputes the stored totals atomically.
	UpdateCart(ctx context.Context, ownerID string, fn CartMutation) (domain.Cart, error)
}
