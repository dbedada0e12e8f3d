// Package messaging publishes order lifecycle events to Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const eventTypeHeader = "event-type"

var producerTracer = otel.Tracer("messaging/producer")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes order events keyed by order id, so every event of one
// order lands on the same partition.
type Producer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

func NewProducer(brokers []string, topic string) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
	}, topic)
}

func newProducer(writer messageWriter, topic string) *Producer {
	return &Producer{
		writer: writer,
		topic:  topic,
		now:    time.Now,
	}
}

func (p *Producer) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	event := newOrderEvent(EventOrderCreated, order, p.now())
	event.Items = order.Items

	return p.publish(ctx, order.ID.String(), event)
}

func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order domain.Order, previous domain.OrderStatus) error {
	event := newOrderEvent(EventOrderStatusChanged, order, p.now())
	event.PreviousStatus = previous

	return p.publish(ctx, order.ID.String(), event)
}

func (p *Producer) publish(ctx context.Context, key string, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(event.Type)},
		},
	}

	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(key),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
