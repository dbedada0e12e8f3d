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
	"golang.org/x/text/currency"
)

type productRepository struct {
	q *db.Queries
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{
		q: db.New(pool),
	}
}

func (r *productRepository) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	row, err := r.q.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("q.GetProduct[%s]: %w", productID, domain.ErrProductNotFound)
		}
		return p, fmt.Errorf("q.GetProduct: %w", err)
	}

	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return p, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.Product{
		ID:    row.ID,
		Name:  row.Name,
		Price: domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Stock: int(row.Stock),
	}, nil
}
