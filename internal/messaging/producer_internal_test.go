package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/currency"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testOrder() domain.Order {
	price := domain.Money{Amount: decimal.RequireFromString("999.99"), Currency: currency.USD}

	return domain.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-1700000000000-042",
		OwnerID:     "user-1",
		Status:      domain.OrderStatusShipped,
		TotalAmount: price.Mul(2),
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), ProductName: "Laptop", Price: price, Quantity: 2, TotalPrice: price.Mul(2)},
		},
	}
}

func TestPublishOrderCreated(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	writer := &fakeWriter{}
	producer := newProducer(writer, "storefront.orders")
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	producer.now = func() time.Time { return fixed }

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(t.Context(), spanCtx)

	order := testOrder()
	require.NoError(t, producer.PublishOrderCreated(ctx, order))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, order.ID.String(), string(msg.Key))

	carrier := NewMessageCarrier(&msg)
	assert.Equal(t, EventOrderCreated, carrier.Get(eventTypeHeader))
	assert.Contains(t, carrier.Get("traceparent"), spanCtx.TraceID().String())

	var event OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventOrderCreated, event.Type)
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, order.OrderNumber, event.OrderNumber)
	assert.Equal(t, fixed, event.Timestamp)
	assert.Len(t, event.Items, 1)
	assert.Empty(t, event.PreviousStatus)
}

func TestPublishOrderStatusChanged(t *testing.T) {
	writer := &fakeWriter{}
	producer := newProducer(writer, "storefront.orders")

	order := testOrder()
	require.NoError(t, producer.PublishOrderStatusChanged(t.Context(), order, domain.OrderStatusConfirmed))
	require.Len(t, writer.messages, 1)

	var event OrderEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
	assert.Equal(t, EventOrderStatusChanged, event.Type)
	assert.Equal(t, domain.OrderStatusShipped, event.Status)
	assert.Equal(t, domain.OrderStatusConfirmed, event.PreviousStatus)
	assert.Empty(t, event.Items)
}

func TestPublishWriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	producer := newProducer(writer, "storefront.orders")

	err := producer.PublishOrderCreated(t.Context(), testOrder())
	require.EqualError(t, err, "writer.WriteMessages: broker down")

	require.NoError(t, producer.Close())
	assert.True(t, writer.closed)
}

func TestMessageCarrier(t *testing.T) {
	msg := kafka.Message{}
	carrier := NewMessageCarrier(&msg)

	carrier.Set("a", "1")
	carrier.Set("b", "2")
	carrier.Set("a", "3")

	assert.Equal(t, "3", carrier.Get("a"))
	assert.Equal(t, "", carrier.Get("missing"))
	assert.Equal(t, []string{"a", "b"}, carrier.Keys())
}
