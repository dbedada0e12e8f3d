package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	conn     conn
	currency currency.Unit
}

// NewCart stores carts in pool. New carts are created in cur.
func NewCart(pool *pgxpool.Pool, cur currency.Unit) port.CartRepository {
	return &cartRepository{
		conn:     pool,
		currency: cur,
	}
}

func NewCartWithTx(tx pgx.Tx, cur currency.Unit) port.CartRepository {
	return &cartRepository{
		conn:     tx,
		currency: cur,
	}
}

func (r *cartRepository) GetOrCreateCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	var c domain.Cart

	if ownerID == "" {
		return c, fmt.Errorf("ownerID is empty")
	}

	cart, err := withTx(ctx, r.conn, func(q *db.Queries) (domain.Cart, error) {
		dbCart, err := r.ensureCart(ctx, q, ownerID, false)
		if err != nil {
			return c, err
		}

		return loadCart(ctx, q, dbCart)
	})
	if err != nil {
		return c, fmt.Errorf("withTx: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) UpdateCart(ctx context.Context, ownerID string, fn port.CartMutation) (domain.Cart, error) {
	var c domain.Cart

	if ownerID == "" {
		return c, fmt.Errorf("ownerID is empty")
	}

	cart, err := withTx(ctx, r.conn, func(q *db.Queries) (domain.Cart, error) {
		dbCart, err := r.ensureCart(ctx, q, ownerID, true)
		if err != nil {
			return c, err
		}

		cart, err := loadCart(ctx, q, dbCart)
		if err != nil {
			return c, err
		}

		if err := fn(&cart); err != nil {
			return c, err
		}

		if err := saveCartItems(ctx, q, cart); err != nil {
			return c, err
		}

		return recalculate(ctx, q, dbCart)
	})
	if err != nil {
		return c, fmt.Errorf("withTx: %w", err)
	}

	return cart, nil
}

// ensureCart creates the owner's cart on first use. With lock set the cart
// row stays locked until the transaction ends, serializing concurrent mutations.
func (r *cartRepository) ensureCart(ctx context.Context, q *db.Queries, ownerID string, lock bool) (db.Cart, error) {
	err := q.EnsureCart(ctx, db.EnsureCartParams{
		OwnerID:  ownerID,
		Currency: r.currency.String(),
	})
	if err != nil {
		return db.Cart{}, fmt.Errorf("q.EnsureCart: %w", err)
	}

	get := q.GetCartByOwner
	if lock {
		get = q.GetCartByOwnerForUpdate
	}

	dbCart, err := get(ctx, ownerID)
	if err != nil {
		return db.Cart{}, fmt.Errorf("q.GetCartByOwner: %w", err)
	}

	return dbCart, nil
}

func loadCart(ctx context.Context, q *db.Queries, dbCart db.Cart) (domain.Cart, error) {
	dbItems, err := q.GetCartItems(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartItems: %w", err)
	}

	cart, err := mapDBCartToDomain(dbCart, dbItems)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapDBCartToDomain: %w", err)
	}

	return cart, nil
}

// saveCartItems makes the stored lines match cart.Items. Lines that are gone
// are deleted before the rest are upserted so (cart_id, product_id) stays unique.
func saveCartItems(ctx context.Context, q *db.Queries, cart domain.Cart) error {
	keep := lo.Map(cart.Items, func(item domain.CartItem, _ int) uuid.UUID {
		return item.ID
	})

	if _, err := q.DeleteCartItemsNotIn(ctx, db.DeleteCartItemsNotInParams{
		CartID:  cart.ID,
		KeepIds: keep,
	}); err != nil {
		return fmt.Errorf("q.DeleteCartItemsNotIn: %w", err)
	}

	for _, item := range cart.Items {
		arg := db.UpsertCartItemParams{
			ID:            item.ID,
			CartID:        cart.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			PriceAmount:   item.Price.Amount,
			PriceCurrency: item.Price.Currency.String(),
			Quantity:      int32(item.Quantity),
			TotalPrice:    item.TotalPrice.Amount,
		}
		if err := q.UpsertCartItem(ctx, arg); err != nil {
			return fmt.Errorf("q.UpsertCartItem[%s]: %w", item.ID, err)
		}
	}

	return nil
}

// recalculate reloads the stored lines and rewrites the cart totals from them.
func recalculate(ctx context.Context, q *db.Queries, dbCart db.Cart) (domain.Cart, error) {
	var c domain.Cart

	cart, err := loadCart(ctx, q, dbCart)
	if err != nil {
		return c, err
	}

	if err := cart.Recalculate(); err != nil {
		return c, fmt.Errorf("cart.Recalculate: %w", err)
	}

	updatedAt, err := q.UpdateCartTotals(ctx, db.UpdateCartTotalsParams{
		ID:          cart.ID,
		TotalAmount: cart.TotalAmount.Amount,
		TotalItems:  int32(cart.TotalItems),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, fmt.Errorf("q.UpdateCartTotals: %w", domain.ErrCartNotFound)
		}
		return c, fmt.Errorf("q.UpdateCartTotals: %w", err)
	}

	cart.UpdatedAt = updatedAt

	return cart, nil
}

func mapDBCartToDomain(dbCart db.Cart, dbItems []db.CartItem) (domain.Cart, error) {
	var c domain.Cart

	parsedCurrency, err := currency.ParseISO(dbCart.Currency)
	if err != nil {
		return c, fmt.Errorf("currency[%s] is not valid: %w", dbCart.Currency, err)
	}

	items, err := mapDBCartItemsToDomain(dbItems)
	if err != nil {
		return c, fmt.Errorf("mapDBCartItemsToDomain: %w", err)
	}

	return domain.Cart{
		ID:          dbCart.ID,
		OwnerID:     dbCart.OwnerID,
		Currency:    parsedCurrency,
		Items:       items,
		TotalAmount: domain.Money{Amount: dbCart.TotalAmount, Currency: parsedCurrency},
		TotalItems:  int(dbCart.TotalItems),
		CreatedAt:   dbCart.CreatedAt,
		UpdatedAt:   dbCart.UpdatedAt,
	}, nil
}

func mapDBCartItemToDomain(row db.CartItem) (domain.CartItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CartItem{
		ID:          row.ID,
		ProductID:   row.ProductID,
		ProductName: row.ProductName,
		Price:       domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Quantity:    int(row.Quantity),
		TotalPrice:  domain.Money{Amount: row.TotalPrice, Currency: parsedCurrency},
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func mapDBCartItemsToDomain(rows []db.CartItem) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapDBCartItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapDBCartItemToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
