package events

import "time"

// StockMovementPayload is sent after a movement has been applied to a product.
type StockMovementPayload struct {
	MovementID   uint      `json:"movement_id"`
	ProductID    uint      `json:"product_id"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Reason       string    `json:"reason"`
	ReferenceID  string    `json:"reference_id,omitempty"`
	CurrentStock int       `json:"current_stock"`
	Timestamp    time.Time `json:"timestamp"`
}

// StockAlertPayload is sent when a product drops to or below its reorder level.
type StockAlertPayload struct {
	ProductID    uint   `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	CurrentStock int    `json:"current_stock"`
	ReorderLevel int    `json:"reorder_level"`
}

// OrderUpdatePayload 订单状态变化
type OrderUpdatePayload struct {
	Kind   string `json:"kind"`
	ID     uint   `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
}
