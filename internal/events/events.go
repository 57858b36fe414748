package events

import (
	"time"
)

// OrderConfirmedEvent is published after a confirmation transaction commits.
type OrderConfirmedEvent struct {
	EventID      string      `json:"event_id"`
	OrderID      string      `json:"order_id"`
	CustomerFbID string      `json:"customer_fb_id"`
	Items        []OrderItem `json:"items"`
	TotalAmount  float64     `json:"total_amount"`
	Profit       float64     `json:"profit"`
	Timestamp    time.Time   `json:"timestamp"`
}

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}
