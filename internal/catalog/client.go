// Package catalog looks products up in a remote catalog service.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient reads products from GET {baseURL}/products/{id}. Calls go through a
// circuit breaker; a not-found answer counts as a successful call.
func NewClient(baseURL string, timeout time.Duration, l *zap.Logger) (port.ProductRepository, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse[%s]: %w", baseURL, err)
	}

	settings := gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			l.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrProductNotFound)
		},
	}

	return &client{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: l,
	}, nil
}

func (c *client) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	product, err := executeWithBreaker(c.cb, func() (domain.Product, error) {
		return c.fetch(ctx, productID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.Warn(ctx, c.logger, "catalog unavailable", zap.Error(err))
		}
		return domain.Product{}, fmt.Errorf("catalog.GetProduct[%s]: %w", productID, err)
	}

	return product, nil
}

func (c *client) fetch(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	var p domain.Product

	endpoint := c.baseURL.JoinPath("products", productID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return p, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return p, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return p, domain.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return p, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("json.Decode: %w", err)
	}

	if p.ID != productID {
		return p, fmt.Errorf("catalog returned product[%s]", p.ID)
	}

	return p, nil
}

func executeWithBreaker[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return *new(T), err
	}

	return res.(T), nil
}
