package entity

import "time"

// MovementType 出入库方向
const (
	MovementTypeIn  = "IN"
	MovementTypeOut = "OUT"
)

// MovementReason 出入库原因
const (
	ReasonPurchaseOrder        = "Purchase Order"
	ReasonSalesOrder           = "Sales Order"
	ReasonStockAdjustment      = "Stock Adjustment"
	ReasonDamageAdjustment     = "Damage Adjustment"
	ReasonReturn               = "Return"
	ReasonTransfer             = "Transfer"
	ReasonStockCountAdjustment = "Stock Count Adjustment"
	ReasonExpiryAdjustment     = "Expiry Adjustment"
)

var MovementReasons = []string{
	ReasonPurchaseOrder,
	ReasonSalesOrder,
	ReasonStockAdjustment,
	ReasonDamageAdjustment,
	ReasonReturn,
	ReasonTransfer,
	ReasonStockCountAdjustment,
	ReasonExpiryAdjustment,
}

func IsValidReason(reason string) bool {
	for _, r := range MovementReasons {
		if r == reason {
			return true
		}
	}
	return false
}

func IsValidMovementType(t string) bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// StockMovement 出入库流水，创建后不再修改
type StockMovement struct {
	Model
	ProductID   uint      `json:"product_id" gorm:"not null;index"`
	Type        string    `json:"type" gorm:"size:8;not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	Reason      string    `json:"reason" gorm:"size:50;not null"`
	ReferenceID string    `json:"reference_id" gorm:"size:64"`
	UserID      string    `json:"user_id" gorm:"size:64"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null;index"`
}

func (StockMovement) TableName() string {
	return "inv_stock_movements"
}
