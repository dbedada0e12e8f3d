package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
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

type productRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.ProductRepository
	container testcontainers.Container
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(productRepositorySuite))
}

func (suite *productRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewProduct(suite.pool)
}

func (suite *productRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(suite.T().Context()))
	}
}

func (suite *productRepositorySuite) TestGetProduct() {
	inserted := fakeProduct("1234.56")
	err := db.New(suite.pool).UpsertProduct(suite.T().Context(), db.UpsertProductParams{
		ID:            inserted.ID,
		Name:          inserted.Name,
		PriceAmount:   inserted.Price.Amount,
		PriceCurrency: inserted.Price.Currency.String(),
		Stock:         int32(inserted.Stock),
	})
	suite.Require().NoError(err)

	missingID := uuid.MustParse(gofakeit.UUID())

	tests := []struct {
		name      string
		productID uuid.UUID
		want      domain.Product
		wantError string
	}{
		{
			name:      "seeded product: ok",
			productID: uuid.MustParse("3f0c2f8e-6b1a-4c55-9a3e-0d4b1f7f0a03"),
			want: domain.Product{
				ID:   uuid.MustParse("3f0c2f8e-6b1a-4c55-9a3e-0d4b1f7f0a03"),
				Name: "Dell XPS 14",
				Price: domain.Money{
					Amount:   decimal.RequireFromString("1499.99"),
					Currency: currency.USD,
				},
				Stock: 15,
			},
		},
		{
			name:      "inserted product: ok",
			productID: inserted.ID,
			want:      inserted,
		},
		{
			name:      "missing product: not found",
			productID: missingID,
			wantError: "q.GetProduct[" + missingID.String() + "]: product not found",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			actual, err := suite.repo.GetProduct(ctx, tt.productID)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				require.ErrorIs(t, err, domain.ErrProductNotFound)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want.ID, actual.ID)
			assert.Equal(t, tt.want.Name, actual.Name)
			assert.Equal(t, tt.want.Stock, actual.Stock)
			assert.Equal(t, tt.want.Price.Currency, actual.Price.Currency)
			assertAmount(t, tt.want.Price.Amount.String(), actual.Price)
		})
	}
}
