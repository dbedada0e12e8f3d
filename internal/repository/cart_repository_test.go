package repository_test

import (
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"golang.org/x/text/currency"
)

type cartRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.CartRepository
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewCart(suite.pool, currency.USD)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *cartRepositorySuite) TestGetOrCreateCart() {
	tests := []struct {
		name      string
		ownerID   string
		wantError string
	}{
		{
			name:    "new owner: empty cart",
			ownerID: gofakeit.UUID(),
		},
		{
			name:      "empty owner: error",
			ownerID:   "",
			wantError: "ownerID is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			cart, err := suite.repo.GetOrCreateCart(ctx, tt.ownerID)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.NotEqual(t, uuid.Nil, cart.ID)
			assert.Equal(t, tt.ownerID, cart.OwnerID)
			assert.Empty(t, cart.Items)
			assert.Equal(t, 0, cart.TotalItems)
			assert.True(t, cart.TotalAmount.Amount.IsZero())
			assert.Equal(t, currency.USD, cart.Currency)

			again, err := suite.repo.GetOrCreateCart(ctx, tt.ownerID)
			require.NoError(t, err)
			assert.Equal(t, cart.ID, again.ID)
		})
	}
}

func (suite *cartRepositorySuite) TestUpdateCartAddItem() {
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()
	laptop := fakeProduct("999.99")
	mouse := fakeProduct("25.50")

	cart, err := suite.repo.UpdateCart(ctx, ownerID, addItem(laptop, 2))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assertAmount(t, "1999.98", cart.TotalAmount)
	assert.Equal(t, 2, cart.TotalItems)

	cart, err = suite.repo.UpdateCart(ctx, ownerID, addItem(mouse, 1))
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assertAmount(t, "2025.48", cart.TotalAmount)
	assert.Equal(t, 3, cart.TotalItems)

	// the line keeps the price captured on first add
	repriced := laptop
	repriced.Price.Amount = decimal.RequireFromString("1299.99")

	cart, err = suite.repo.UpdateCart(ctx, ownerID, addItem(repriced, 1))
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	line, ok := findLine(cart, laptop.ID)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)
	assertAmount(t, "999.99", line.Price)
	assertAmount(t, "2999.97", line.TotalPrice)
	assertAmount(t, "3025.47", cart.TotalAmount)
	assert.Equal(t, 4, cart.TotalItems)

	stored, err := suite.repo.GetOrCreateCart(ctx, ownerID)
	require.NoError(t, err)
	assertCart(t, cart, stored)
}

func (suite *cartRepositorySuite) TestUpdateCart() {
	laptop := fakeProduct("100.00")
	mouse := fakeProduct("50.50")

	tests := []struct {
		name           string
		mutationFunc   func(seeded domain.Cart) port.CartMutation
		wantTotal      string
		wantTotalItems int
		wantLines      int
		wantError      error
	}{
		{
			name: "update quantity: ok",
			mutationFunc: func(seeded domain.Cart) port.CartMutation {
				line, _ := findLine(seeded, laptop.ID)
				return func(cart *domain.Cart) error {
					return cart.UpdateItemQuantity(line.ID, 5)
				}
			},
			wantTotal:      "550.50",
			wantTotalItems: 6,
			wantLines:      2,
		},
		{
			name: "update quantity to zero: line removed",
			mutationFunc: func(seeded domain.Cart) port.CartMutation {
				line, _ := findLine(seeded, laptop.ID)
				return func(cart *domain.Cart) error {
					return cart.UpdateItemQuantity(line.ID, 0)
				}
			},
			wantTotal:      "50.50",
			wantTotalItems: 1,
			wantLines:      1,
		},
		{
			name: "remove item: ok",
			mutationFunc: func(seeded domain.Cart) port.CartMutation {
				line, _ := findLine(seeded, mouse.ID)
				return func(cart *domain.Cart) error {
					return cart.RemoveItem(line.ID)
				}
			},
			wantTotal:      "200.00",
			wantTotalItems: 2,
			wantLines:      1,
		},
		{
			name: "remove missing item: not found, cart unchanged",
			mutationFunc: func(domain.Cart) port.CartMutation {
				return func(cart *domain.Cart) error {
					return cart.RemoveItem(uuid.New())
				}
			},
			wantTotal:      "250.50",
			wantTotalItems: 3,
			wantLines:      2,
			wantError:      domain.ErrCartItemNotFound,
		},
		{
			name: "clear: ok",
			mutationFunc: func(domain.Cart) port.CartMutation {
				return func(cart *domain.Cart) error {
					cart.Clear()
					return nil
				}
			},
			wantTotal:      "0",
			wantTotalItems: 0,
			wantLines:      0,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			ownerID := gofakeit.UUID()

			_, err := suite.repo.UpdateCart(ctx, ownerID, addItem(laptop, 2))
			require.NoError(t, err)
			seeded, err := suite.repo.UpdateCart(ctx, ownerID, addItem(mouse, 1))
			require.NoError(t, err)

			actual, err := suite.repo.UpdateCart(ctx, ownerID, tt.mutationFunc(seeded))
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				actual = seeded
			} else {
				require.NoError(t, err)
			}

			stored, err := suite.repo.GetOrCreateCart(ctx, ownerID)
			require.NoError(t, err)

			assertCart(t, actual, stored)
			assertAmount(t, tt.wantTotal, stored.TotalAmount)
			assert.Equal(t, tt.wantTotalItems, stored.TotalItems)
			assert.Len(t, stored.Items, tt.wantLines)
		})
	}
}

func (suite *cartRepositorySuite) TestUpdateCartConcurrent() {
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()
	product := fakeProduct("10.00")

	const workers = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.repo.UpdateCart(ctx, ownerID, addItem(product, 1))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := suite.repo.GetOrCreateCart(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, workers, cart.Items[0].Quantity)
	assert.Equal(t, workers, cart.TotalItems)
	assertAmount(t, "100.00", cart.TotalAmount)
}

func (suite *cartRepositorySuite) TestUpdateCartRewritesStaleTotals() {
	t := suite.T()
	ctx := t.Context()

	ownerID := gofakeit.UUID()

	cart, err := suite.repo.UpdateCart(ctx, ownerID, addItem(fakeProduct("42.00"), 3))
	require.NoError(t, err)

	_, err = suite.pool.Exec(ctx, "UPDATE carts SET total_amount = 0, total_items = 0 WHERE id = $1", cart.ID)
	require.NoError(t, err)

	recalculated, err := suite.repo.UpdateCart(ctx, ownerID, func(*domain.Cart) error { return nil })
	require.NoError(t, err)
	assertAmount(t, "126.00", recalculated.TotalAmount)
	assert.Equal(t, 3, recalculated.TotalItems)

	stored, err := suite.repo.GetOrCreateCart(ctx, ownerID)
	require.NoError(t, err)
	assertCart(t, recalculated, stored)
}

func addItem(product domain.Product, quantity int) port.CartMutation {
	return func(cart *domain.Cart) error {
		return cart.AddItem(product, quantity)
	}
}

func findLine(cart domain.Cart, productID uuid.UUID) (domain.CartItem, bool) {
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return domain.CartItem{}, false
}

func fakeProduct(price string) domain.Product {
	return domain.Product{
		ID:   uuid.MustParse(gofakeit.UUID()),
		Name: gofakeit.ProductName(),
		Price: domain.Money{
			Amount:   decimal.RequireFromString(price),
			Currency: currency.USD,
		},
		Stock: gofakeit.Number(1, 100),
	}
}

func assertAmount(t *testing.T, expected string, actual domain.Money) {
	t.Helper()

	assert.True(t, decimal.RequireFromString(expected).Equal(actual.Amount),
		"expected %s, got %s", expected, actual.Amount)
}

func assertCart(t *testing.T, expected domain.Cart, actual domain.Cart) {
	t.Helper()

	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.CartItem{}, "CreatedAt", "UpdatedAt"),
		cmpopts.IgnoreFields(domain.Cart{}, "CreatedAt", "UpdatedAt"),
		cmpopts.EquateEmpty(),
		currencyComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
	assert.False(t, actual.UpdatedAt.IsZero())
}
