package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus 采购订单状态
const (
	POStatusOrdered   = "Ordered"
	POStatusReceived  = "Received"
	POStatusCancelled = "Cancelled"
)

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	Model
	PONumber         string              `json:"po_number" gorm:"size:32;not null;uniqueIndex"`
	SupplierID       uint                `json:"supplier_id" gorm:"not null;index"`
	TotalAmount      decimal.Decimal     `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Status           string              `json:"status" gorm:"size:20;not null;default:Ordered;index"`
	OrderDate        time.Time           `json:"order_date" gorm:"not null;index"`
	ExpectedDelivery *time.Time          `json:"expected_delivery"`
	ReceivedDate     *time.Time          `json:"received_date"`
	Items            []PurchaseOrderItem `json:"items" gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

func (PurchaseOrder) TableName() string {
	return "inv_purchase_orders"
}

// PurchaseOrderItem 采购订单明细
type PurchaseOrderItem struct {
	ID              uint            `json:"-" gorm:"primaryKey;autoIncrement"`
	PurchaseOrderID uint            `json:"-" gorm:"not null;index"`
	ProductID       uint            `json:"product_id" gorm:"not null;index"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	UnitPrice       decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
}

func (PurchaseOrderItem) TableName() string {
	return "inv_purchase_order_items"
}

func (i PurchaseOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
