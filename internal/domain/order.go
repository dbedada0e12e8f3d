package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

type Order struct {
	ID           uuid.UUID   `json:"id"`
	OrderNumber  string      `json:"order_number"`
	OwnerID      string      `json:"owner_id"`
	Status       OrderStatus `json:"status"`
	Subtotal     Money       `json:"subtotal"`
	Tax          Money       `json:"tax"`
	ShippingCost Money       `json:"shipping_cost"`
	TotalAmount  Money       `json:"total_amount"`
	Items        []OrderItem `json:"items"`

	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
	Phone           string `json:"phone"`
	Notes           string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Price       Money     `json:"price"`
	Quantity    int       `json:"quantity"`
	TotalPrice  Money     `json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
}

func (o Order) Currency() currency.Unit {
	return o.TotalAmount.Currency
}

// CalculateTotals derives item totals and the subtotal from the line items
// and sets TotalAmount = Subtotal + Tax + ShippingCost. Tax and ShippingCost
// must already be set.
func (o *Order) CalculateTotals() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}

	if o.Tax.IsNegative() {
		return fmt.Errorf("tax[%s]: %w", o.Tax, ErrNegativeAmount)
	}
	if o.ShippingCost.IsNegative() {
		return fmt.Errorf("shipping cost[%s]: %w", o.ShippingCost, ErrNegativeAmount)
	}

	cur := o.Items[0].Price.Currency
	subtotal := ZeroMoney(cur)

	for i := range o.Items {
		item := &o.Items[i]

		if item.Quantity <= 0 || item.Quantity > MaxQuantity {
			return fmt.Errorf("item[%s]: %w", item.ProductID, ErrInvalidQuantity)
		}

		item.TotalPrice = item.Price.Mul(item.Quantity)

		var err error
		subtotal, err = subtotal.Add(item.TotalPrice)
		if err != nil {
			return fmt.Errorf("item[%s]: %w", item.ProductID, err)
		}
	}

	total, err := subtotal.Add(o.Tax)
	if err != nil {
		return fmt.Errorf("tax: %w", err)
	}

	total, err = total.Add(o.ShippingCost)
	if err != nil {
		return fmt.Errorf("shipping cost: %w", err)
	}

	o.Subtotal = subtotal
	o.TotalAmount = total

	return nil
}

// OrderItemsFromCart copies cart lines into independent order lines.
func OrderItemsFromCart(cart Cart) []OrderItem {
	items := make([]OrderItem, 0, len(cart.Items))

	for _, item := range cart.Items {
		items = append(items, OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		})
	}

	return items
}
