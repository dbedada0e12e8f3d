package domain

import "errors"

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNumberConflict = errors.New("order number already exists")

	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrEmptyOrder         = errors.New("no items in order")
	ErrCurrencyMismatch   = errors.New("currency mismatch")
	ErrNegativeAmount     = errors.New("amount is negative")
)
