package domain

import "fmt"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
	OrderStatusShipped:   {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", fmt.Errorf("status[%s]: %w", s, ErrInvalidOrderStatus)
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

// RevenueStatuses are the statuses whose orders count towards realized revenue.
func RevenueStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered}
}
