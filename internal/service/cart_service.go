// Package service holds the cart and order use cases.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/telemetry"
	"go.uber.org/zap"
)

type CartService struct {
	carts    port.CartRepository
	products port.ProductRepository
	metrics  *telemetry.Metrics
	logger   *zap.Logger
}

func NewCartService(carts port.CartRepository, products port.ProductRepository, metrics *telemetry.Metrics, l *zap.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		metrics:  metrics,
		logger:   l,
	}
}

// GetOrCreateCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetOrCreateCart(ctx context.Context, user domain.User) (domain.Cart, error) {
	cart, err := s.carts.GetOrCreateCart(ctx, user.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.GetOrCreateCart: %w", err)
	}

	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, user domain.User) (domain.Cart, error) {
	return s.GetOrCreateCart(ctx, user)
}

// AddToCart snapshots the product's current name and price into a new line,
// or grows the existing line for the product at its original price.
func (s *CartService) AddToCart(ctx context.Context, user domain.User, productID uuid.UUID, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	cart, err := s.carts.UpdateCart(ctx, user.ID, func(cart *domain.Cart) error {
		return cart.AddItem(product, quantity)
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.UpdateCart: %w", err)
	}

	s.metrics.CartMutation(ctx, "add")
	logger.Info(ctx, s.logger, "cart item added",
		zap.String("owner_id", user.ID),
		zap.Stringer("product_id", productID),
		zap.Int("quantity", quantity),
	)

	return cart, nil
}

// UpdateCartItem sets the line quantity. Zero or less removes the line.
func (s *CartService) UpdateCartItem(ctx context.Context, user domain.User, itemID uuid.UUID, quantity int) (domain.Cart, error) {
	cart, err := s.carts.UpdateCart(ctx, user.ID, func(cart *domain.Cart) error {
		return cart.UpdateItemQuantity(itemID, quantity)
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.UpdateCart: %w", err)
	}

	s.metrics.CartMutation(ctx, "update")

	return cart, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, user domain.User, itemID uuid.UUID) (domain.Cart, error) {
	cart, err := s.carts.UpdateCart(ctx, user.ID, func(cart *domain.Cart) error {
		return cart.RemoveItem(itemID)
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.UpdateCart: %w", err)
	}

	s.metrics.CartMutation(ctx, "remove")

	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, user domain.User) (domain.Cart, error) {
	cart, err := s.carts.UpdateCart(ctx, user.ID, func(cart *domain.Cart) error {
		cart.Clear()
		return nil
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("carts.UpdateCart: %w", err)
	}

	s.metrics.CartMutation(ctx, "clear")
	logger.Info(ctx, s.logger, "cart cleared", zap.String("owner_id", user.ID))

	return cart, nil
}
