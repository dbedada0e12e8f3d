package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/nikolayk812/storefront"

// Metrics holds the business counters recorded by the services.
type Metrics struct {
	cartMutations metric.Int64Counter
	ordersCreated metric.Int64Counter
	statusChanges metric.Int64Counter
}

func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName)

	cartMutations, err := meter.Int64Counter("storefront.cart.mutations",
		metric.WithDescription("Cart mutations by operation"))
	if err != nil {
		return nil, fmt.Errorf("meter.Int64Counter[cart.mutations]: %w", err)
	}

	ordersCreated, err := meter.Int64Counter("storefront.orders.created",
		metric.WithDescription("Orders created"))
	if err != nil {
		return nil, fmt.Errorf("meter.Int64Counter[orders.created]: %w", err)
	}

	statusChanges, err := meter.Int64Counter("storefront.orders.status_changes",
		metric.WithDescription("Order status changes by target status"))
	if err != nil {
		return nil, fmt.Errorf("meter.Int64Counter[orders.status_changes]: %w", err)
	}

	return &Metrics{
		cartMutations: cartMutations,
		ordersCreated: ordersCreated,
		statusChanges: statusChanges,
	}, nil
}

// NoopMetrics discards every measurement.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

func (m *Metrics) CartMutation(ctx context.Context, op string) {
	m.cartMutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (m *Metrics) OrderCreated(ctx context.Context) {
	m.ordersCreated.Add(ctx, 1)
}

func (m *Metrics) OrderStatusChanged(ctx context.Context, status string) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
