package domain

import "github.com/shopspring/decimal"

type OrderStats struct {
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	CompletedOrders int64           `json:"completed_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}
