package handler

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0,max=2147483647"`
}

// updateCartItemRequest allows zero, which removes the line.
type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=2147483647"`
}

type orderDetailsRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
	BillingAddress  string `json:"billing_address" validate:"max=500"`
	Phone           string `json:"phone" validate:"max=32"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type orderItemRequest struct {
	ProductID   uuid.UUID    `json:"product_id" validate:"required"`
	ProductName string       `json:"product_name" validate:"required,max=255"`
	Price       domain.Money `json:"price"`
	Quantity    int          `json:"quantity" validate:"required,gt=0,max=2147483647"`
}

type createOrderRequest struct {
	orderDetailsRequest

	Items        []orderItemRequest `json:"items" validate:"dive"`
	Subtotal     *decimal.Decimal   `json:"subtotal"`
	Tax          decimal.Decimal    `json:"tax"`
	ShippingCost decimal.Decimal    `json:"shipping_cost"`
	TotalAmount  *decimal.Decimal   `json:"total_amount"`
}

type checkoutRequest struct {
	orderDetailsRequest

	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r orderDetailsRequest) toDetails() service.OrderDetails {
	return service.OrderDetails{
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		Phone:           r.Phone,
		Notes:           r.Notes,
	}
}

func (r createOrderRequest) toService() (service.CreateOrderRequest, error) {
	for _, item := range r.Items {
		if item.Price.IsNegative() {
			return service.CreateOrderRequest{}, fmt.Errorf("price[%s]: %w", item.Price, domain.ErrNegativeAmount)
		}
	}

	return service.CreateOrderRequest{
		Items: lo.Map(r.Items, func(item orderItemRequest, _ int) service.OrderItemRequest {
			return service.OrderItemRequest{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Price:       item.Price,
				Quantity:    item.Quantity,
			}
		}),
		Details:      r.toDetails(),
		Subtotal:     r.Subtotal,
		Tax:          r.Tax,
		ShippingCost: r.ShippingCost,
		TotalAmount:  r.TotalAmount,
	}, nil
}

func (r checkoutRequest) toService() service.CheckoutRequest {
	return service.CheckoutRequest{
		Details:      r.toDetails(),
		Tax:          r.Tax,
		ShippingCost: r.ShippingCost,
	}
}
