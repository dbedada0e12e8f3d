package port

import "context"

// UnitOfWork runs fn with repositories bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(carts CartRepository, orders OrderRepository) error) error
}
