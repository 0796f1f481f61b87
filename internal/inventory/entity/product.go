package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 产品
type Product struct {
	Model
	SKU            string          `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name           string          `json:"name" gorm:"size:200;not null"`
	Category       string          `json:"category" gorm:"size:100;index"`
	CurrentStock   int             `json:"current_stock" gorm:"not null;default:0"`
	ReorderLevel   int             `json:"reorder_level" gorm:"not null;default:0"`
	UnitCost       decimal.Decimal `json:"unit_cost" gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice   decimal.Decimal `json:"selling_price" gorm:"type:decimal(12,2);not null;default:0"`
	SupplierID     *uint           `json:"supplier_id" gorm:"index"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	Barcode        string          `json:"barcode" gorm:"size:64"`
}

func (Product) TableName() string {
	return "inv_products"
}

// ApplyMovement 按出入库方向调整库存，出库不会使库存低于零
func (p *Product) ApplyMovement(movementType string, quantity int) {
	switch movementType {
	case MovementTypeIn:
		p.CurrentStock += quantity
	case MovementTypeOut:
		p.CurrentStock -= quantity
		if p.CurrentStock < 0 {
			p.CurrentStock = 0
		}
	}
}
