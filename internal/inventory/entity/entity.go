package entity

import (
	"time"

	"gorm.io/gorm"
)

// Model 公共字段，id 由仓库在创建时分配
type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Model) GetID() uint { return m.ID }

func (m *Model) SetID(id uint) { m.ID = id }

// Stamp sets the bookkeeping timestamps the way gorm does on save.
func (m *Model) Stamp(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// AutoMigrate 自动迁移所有库存表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Supplier{},
		&Product{},

		// 库存
		&StockMovement{},

		// 销售
		&SalesOrder{},
		&SalesOrderItem{},

		// 采购
		&PurchaseOrder{},
		&PurchaseOrderItem{},

		// 编号
		&Sequence{},
	)
}

// Sequence 单据编号计数器，按前缀和年份区分
type Sequence struct {
	Name  string `json:"name" gorm:"primaryKey;size:32"`
	Value int    `json:"value" gorm:"not null;default:0"`
}

func (Sequence) TableName() string {
	return "inv_sequences"
}
