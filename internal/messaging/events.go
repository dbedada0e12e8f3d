package messaging

import (
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the message value for every order lifecycle event. The event
// type is repeated in the "event-type" header.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        uuid.UUID          `json:"order_id"`
	OrderNumber    string             `json:"order_number"`
	OwnerID        string             `json:"owner_id"`
	Status         domain.OrderStatus `json:"status"`
	PreviousStatus domain.OrderStatus `json:"previous_status,omitempty"`
	TotalAmount    domain.Money       `json:"total_amount"`
	Items          []domain.OrderItem `json:"items,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}

func newOrderEvent(eventType string, order domain.Order, now time.Time) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OwnerID:     order.OwnerID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Timestamp:   now.UTC(),
	}
}
