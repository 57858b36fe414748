package domain

import "time"

// Order statuses.
const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// OrderIntent is the structured form of a free-text confirmation message.
// It is a best-effort scrape: missing lines leave fields empty, malformed
// amounts fall back to zero.
type OrderIntent struct {
	Name           string
	Address        string
	Phone          string
	ProductCodes   []string
	DeliveryCharge float64
	PaidInAdvance  float64
	COD            float64
}

// OrderItem is one product line of a pending order. Sizes maps size label to
// the quantity ordered in that size.
type OrderItem struct {
	ProductID   string         `dynamodbav:"product_id"   json:"product_id"`
	ProductName string         `dynamodbav:"product_name" json:"product_name"`
	Sizes       map[string]int `dynamodbav:"sizes"        json:"sizes"`
	UnitPrice   float64        `dynamodbav:"unit_price"   json:"unit_price"`
	TotalPrice  float64        `dynamodbav:"total_price"  json:"total_price"`
}

// PendingOrder is the order record created by a successful confirmation.
type PendingOrder struct {
	OrderID         string      `dynamodbav:"order_id"          json:"order_id"`
	CustomerName    string      `dynamodbav:"customer_name"     json:"customer_name"`
	CustomerAddress string      `dynamodbav:"customer_address"  json:"customer_address"`
	CustomerPhone   string      `dynamodbav:"customer_phone"    json:"customer_phone"`
	Items           []OrderItem `dynamodbav:"items"             json:"items"`
	DeliveryCharge  float64     `dynamodbav:"delivery_charge"   json:"delivery_charge"`
	AdvancePaid     float64     `dynamodbav:"advance_paid"      json:"advance_paid"`
	CODAmount       float64     `dynamodbav:"cod_amount"        json:"cod_amount"`
	TotalOrderPrice float64     `dynamodbav:"total_order_price" json:"total_order_price"`
	Profit          float64     `dynamodbav:"profit"            json:"profit"`
	Status          string      `dynamodbav:"status"            json:"status"`
	Source          string      `dynamodbav:"source"            json:"source"`
	Courier         string      `dynamodbav:"courier,omitempty"        json:"courier,omitempty"`
	ConsignmentID   string      `dynamodbav:"consignment_id,omitempty" json:"consignment_id,omitempty"`
	UserID          string      `dynamodbav:"user_id"           json:"user_id"`
	CustomerFbID    string      `dynamodbav:"customer_fb_id"    json:"customer_fb_id"`
	CreatedAt       time.Time   `dynamodbav:"created_at"        json:"created_at"`
	UpdatedAt       time.Time   `dynamodbav:"updated_at"        json:"updated_at"`
}
