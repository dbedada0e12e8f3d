package domain

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

// Cart is the single mutable basket owned by one user. TotalAmount and
// TotalItems are derived from Items and rebuilt by Recalculate after every mutation.
type Cart struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Currency    currency.Unit `json:"-"`
	Items       []CartItem    `json:"items"`
	TotalAmount Money         `json:"total_amount"`
	TotalItems  int           `json:"total_items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartItem struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       Money     `json:"price"`
	Quantity    int       `json:"quantity"`
	TotalPrice  Money     `json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaxQuantity is the largest quantity a single line may hold.
const MaxQuantity = math.MaxInt32

// AddItem merges quantity into the line for product.ID, keeping the price
// captured when the line was first created, or appends a new line.
func (c *Cart) AddItem(product Product, quantity int) error {
	if quantity <= 0 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	if product.Price.Currency != c.Currency {
		return fmt.Errorf("product[%s] priced in %s, cart in %s: %w",
			product.ID, product.Price.Currency, c.Currency, ErrCurrencyMismatch)
	}

	idx := slices.IndexFunc(c.Items, func(item CartItem) bool {
		return item.ProductID == product.ID
	})

	if idx >= 0 {
		merged := c.Items[idx].Quantity + quantity
		if merged > MaxQuantity {
			return fmt.Errorf("item[%s] quantity %d exceeds %d: %w", c.Items[idx].ID, merged, MaxQuantity, ErrInvalidQuantity)
		}
		c.Items[idx].setQuantity(merged)
	} else {
		item := CartItem{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
		}
		item.setQuantity(quantity)
		c.Items = append(c.Items, item)
	}

	return c.Recalculate()
}

// UpdateItemQuantity sets the quantity of a line; zero or negative removes it.
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, quantity int) error {
	if quantity > MaxQuantity {
		return ErrInvalidQuantity
	}

	idx, err := c.itemIndex(itemID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		c.Items = slices.Delete(c.Items, idx, idx+1)
	} else {
		c.Items[idx].setQuantity(quantity)
	}

	return c.Recalculate()
}

func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	idx, err := c.itemIndex(itemID)
	if err != nil {
		return err
	}

	c.Items = slices.Delete(c.Items, idx, idx+1)

	return c.Recalculate()
}

func (c *Cart) Clear() {
	c.Items = nil
	c.TotalAmount = ZeroMoney(c.Currency)
	c.TotalItems = 0
}

// Recalculate rebuilds the cart totals from scratch.
func (c *Cart) Recalculate() error {
	total := ZeroMoney(c.Currency)

	for _, item := range c.Items {
		var err error
		total, err = total.Add(item.TotalPrice)
		if err != nil {
			return fmt.Errorf("item[%s]: %w", item.ID, err)
		}
	}

	totalItems := lo.SumBy(c.Items, func(item CartItem) int {
		return item.Quantity
	})
	if totalItems > MaxQuantity {
		return fmt.Errorf("cart holds %d items, more than %d: %w", totalItems, MaxQuantity, ErrInvalidQuantity)
	}

	c.TotalAmount = total
	c.TotalItems = totalItems

	return nil
}

func (c *Cart) Item(itemID uuid.UUID) (CartItem, bool) {
	return lo.Find(c.Items, func(item CartItem) bool {
		return item.ID == itemID
	})
}

func (c *Cart) itemIndex(itemID uuid.UUID) (int, error) {
	idx := slices.IndexFunc(c.Items, func(item CartItem) bool {
		return item.ID == itemID
	})
	if idx < 0 {
		return -1, fmt.Errorf("item[%s]: %w", itemID, ErrCartItemNotFound)
	}

	return idx, nil
}

func (i *CartItem) setQuantity(quantity int) {
	i.Quantity = quantity
	i.TotalPrice = i.Price.Mul(quantity)
}
