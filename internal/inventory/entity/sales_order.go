package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrderStatus 销售订单状态
const (
	SOStatusPending    = "Pending"
	SOStatusProcessing = "Processing"
	SOStatusShipped    = "Shipped"
	SOStatusFulfilled  = "Fulfilled"
)

// SOStatusRank orders the sales order lifecycle; transitions only move forward.
var SOStatusRank = map[string]int{
	SOStatusPending:    0,
	SOStatusProcessing: 1,
	SOStatusShipped:    2,
	SOStatusFulfilled:  3,
}

// SalesOrder 销售订单
type SalesOrder struct {
	Model
	OrderNumber     string           `json:"order_number" gorm:"size:32;not null;uniqueIndex"`
	CustomerName    string           `json:"customer_name" gorm:"size:200;not null"`
	TotalAmount     decimal.Decimal  `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Status          string           `json:"status" gorm:"size:20;not null;default:Pending;index"`
	OrderDate       time.Time        `json:"order_date" gorm:"not null;index"`
	FulfillmentDate *time.Time       `json:"fulfillment_date"`
	Items           []SalesOrderItem `json:"items" gorm:"foreignKey:SalesOrderID;constraint:OnDelete:CASCADE"`
}

func (SalesOrder) TableName() string {
	return "inv_sales_orders"
}

// SalesOrderItem 销售订单明细
type SalesOrderItem struct {
	ID           uint            `json:"-" gorm:"primaryKey;autoIncrement"`
	SalesOrderID uint            `json:"-" gorm:"not null;index"`
	ProductID    uint            `json:"product_id" gorm:"not null;index"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	UnitPrice    decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
}

func (SalesOrderItem) TableName() string {
	return "inv_sales_order_items"
}

// Subtotal 行金额
func (i SalesOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
