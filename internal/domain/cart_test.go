package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestCart_AddItem(t *testing.T) {
	laptop := product("999.99")

	tests := []struct {
		name         string
		prepare      func(c *domain.Cart)
		product      domain.Product
		quantity     int
		wantError    error
		wantItems    int
		wantQuantity int
		wantTotal    string
	}{
		{
			name:         "new line: ok",
			product:      laptop,
			quantity:     2,
			wantItems:    1,
			wantQuantity: 2,
			wantTotal:    "1999.98",
		},
		{
			name: "same product merges into one line: ok",
			prepare: func(c *domain.Cart) {
				require.NoError(t, c.AddItem(laptop, 2))
			},
			product:      laptop,
			quantity:     3,
			wantItems:    1,
			wantQuantity: 5,
			wantTotal:    "4999.95",
		},
		{
			name: "merge keeps snapshot price: ok",
			prepare: func(c *domain.Cart) {
				require.NoError(t, c.AddItem(laptop, 2))
			},
			product: func() domain.Product {
				repriced := laptop
				repriced.Price.Amount = decimal.RequireFromString("1299.00")
				return repriced
			}(),
			quantity:     3,
			wantItems:    1,
			wantQuantity: 5,
			wantTotal:    "4999.95",
		},
		{
			name:      "zero quantity: fail",
			product:   laptop,
			quantity:  0,
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name:      "quantity above int32 range: fail",
			product:   laptop,
			quantity:  1<<32 + 1,
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name: "merged quantity above max: fail",
			prepare: func(c *domain.Cart) {
				require.NoError(t, c.AddItem(laptop, domain.MaxQuantity))
			},
			product:   laptop,
			quantity:  1,
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name:         "max quantity: ok",
			product:      product("0.01"),
			quantity:     domain.MaxQuantity,
			wantItems:    1,
			wantQuantity: domain.MaxQuantity,
			wantTotal:    "21474836.47",
		},
		{
			name: "different currency: fail",
			product: func() domain.Product {
				p := laptop
				p.Price.Currency = currency.EUR
				return p
			}(),
			quantity:  1,
			wantError: domain.ErrCurrencyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := emptyCart()
			if tt.prepare != nil {
				tt.prepare(&cart)
			}

			err := cart.AddItem(tt.product, tt.quantity)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			require.Len(t, cart.Items, tt.wantItems)
			assert.Equal(t, tt.wantQuantity, cart.Items[0].Quantity)
			assertAmount(t, tt.wantTotal, cart.Items[0].TotalPrice)
			assertAmount(t, tt.wantTotal, cart.TotalAmount)
			assert.Equal(t, tt.wantQuantity, cart.TotalItems)
			assertCartInvariant(t, cart)
		})
	}
}

func TestCart_UpdateItemQuantity(t *testing.T) {
	tests := []struct {
		name       string
		quantity   int
		unknownID  bool
		wantError  error
		wantItems  int
		wantTotal  string
		wantAmount int
	}{
		{
			name:       "set quantity: ok",
			quantity:   4,
			wantItems:  2,
			wantTotal:  "4009.96",
			wantAmount: 5,
		},
		{
			name:       "zero removes the line: ok",
			quantity:   0,
			wantItems:  1,
			wantTotal:  "10.00",
			wantAmount: 1,
		},
		{
			name:       "negative removes the line: ok",
			quantity:   -3,
			wantItems:  1,
			wantTotal:  "10.00",
			wantAmount: 1,
		},
		{
			name:      "quantity above max: fail",
			quantity:  domain.MaxQuantity + 1,
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name:      "unknown item: not found",
			quantity:  1,
			unknownID: true,
			wantError: domain.ErrCartItemNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := emptyCart()
			require.NoError(t, cart.AddItem(product("999.99"), 2))
			require.NoError(t, cart.AddItem(product("10.00"), 1))

			itemID := cart.Items[0].ID
			if tt.unknownID {
				itemID = uuid.New()
			}

			err := cart.UpdateItemQuantity(itemID, tt.quantity)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Len(t, cart.Items, tt.wantItems)
			assertAmount(t, tt.wantTotal, cart.TotalAmount)
			assert.Equal(t, tt.wantAmount, cart.TotalItems)
			assertCartInvariant(t, cart)

			if tt.quantity <= 0 {
				_, found := cart.Item(itemID)
				assert.False(t, found)
			}
		})
	}
}

func TestCart_TotalItemsAboveMax(t *testing.T) {
	cart := emptyCart()
	require.NoError(t, cart.AddItem(product("1.00"), domain.MaxQuantity))

	err := cart.AddItem(product("2.00"), 1)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCart_RemoveItem(t *testing.T) {
	cart := emptyCart()
	require.NoError(t, cart.AddItem(product("999.99"), 2))

	err := cart.RemoveItem(uuid.New())
	require.ErrorIs(t, err, domain.ErrCartItemNotFound)
	assert.Len(t, cart.Items, 1)

	err = cart.RemoveItem(cart.Items[0].ID)
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.Amount.IsZero())
	assert.Zero(t, cart.TotalItems)
}

func TestCart_Clear(t *testing.T) {
	cart := emptyCart()
	require.NoError(t, cart.AddItem(product("999.99"), 2))
	require.NoError(t, cart.AddItem(product("49.50"), 3))

	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.Amount.IsZero())
	assert.Equal(t, currency.USD, cart.TotalAmount.Currency)
	assert.Zero(t, cart.TotalItems)
}

func emptyCart() domain.Cart {
	return domain.Cart{
		ID:          uuid.New(),
		OwnerID:     uuid.NewString(),
		Currency:    currency.USD,
		TotalAmount: domain.ZeroMoney(currency.USD),
	}
}

func product(price string) domain.Product {
	return domain.Product{
		ID:   uuid.New(),
		Name: "ThinkPad X1 Carbon",
		Price: domain.Money{
			Amount:   decimal.RequireFromString(price),
			Currency: currency.USD,
		},
		Stock: 10,
	}
}

func assertAmount(t *testing.T, expected string, actual domain.Money) {
	t.Helper()

	want := decimal.RequireFromString(expected)
	assert.Truef(t, want.Equal(actual.Amount), "expected %s, got %s", want, actual.Amount)
}

func assertCartInvariant(t *testing.T, cart domain.Cart) {
	t.Helper()

	total := decimal.Zero
	quantity := 0
	for _, item := range cart.Items {
		assert.True(t, item.Price.Amount.Mul(decimal.NewFromInt(int64(item.Quantity))).Equal(item.TotalPrice.Amount))
		total = total.Add(item.TotalPrice.Amount)
		quantity += item.Quantity
	}

	assert.True(t, total.Equal(cart.TotalAmount.Amount))
	assert.Equal(t, quantity, cart.TotalItems)
}
