package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Cart struct {
	ID          uuid.UUID
	OwnerID     string
	Currency    string
	TotalAmount decimal.Decimal
	TotalItems  int32
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CartItem struct {
	ID            uuid.UUID
	CartID        uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Quantity      int32
	TotalPrice    decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	OwnerID         string
	Status          string
	Currency        string
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	ShippingCost    decimal.Decimal
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	Phone           string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Quantity      int32
	TotalPrice    decimal.Decimal
	CreatedAt     time.Time
}
