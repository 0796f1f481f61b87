// Package analytics derives the dashboard and report aggregates from
// snapshots of the inventory collections. Every function is pure and
// degrades to zero values on empty input.
package analytics

import (
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/shopspring/decimal"
)

// StockStatus 库存状态
type StockStatus string

const (
	StockNormal     StockStatus = "normal"
	StockLow        StockStatus = "low"
	StockOutOfStock StockStatus = "out"
)

// IsValidStockStatus reports whether s names one of the stock classes.
func IsValidStockStatus(s string) bool {
	switch StockStatus(s) {
	case StockNormal, StockLow, StockOutOfStock:
		return true
	}
	return false
}

// ClassifyStock 判断库存状态：零为缺货，不超过补货点为低库存
func ClassifyStock(p entity.Product) StockStatus {
	switch {
	case p.CurrentStock <= 0:
		return StockOutOfStock
	case p.CurrentStock <= p.ReorderLevel:
		return StockLow
	default:
		return StockNormal
	}
}

// StockHealth 库存健康汇总
type StockHealth struct {
	TotalProducts             int             `json:"total_products"`
	LowStockCount             int             `json:"low_stock_count"`
	OutOfStockCount           int             `json:"out_of_stock_count"`
	TotalInventoryCost        decimal.Decimal `json:"total_inventory_cost"`
	TotalInventoryRetailValue decimal.Decimal `json:"total_inventory_retail_value"`
	PotentialProfit           decimal.Decimal `json:"potential_profit"`
}

// StockValue returns stock × unit cost.
func StockValue(p entity.Product) decimal.Decimal {
	return p.UnitCost.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

// RetailValue returns stock × selling price.
func RetailValue(p entity.Product) decimal.Decimal {
	return p.SellingPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

func StockHealthSummary(products []entity.Product) StockHealth {
	h := StockHealth{
		TotalProducts:             len(products),
		TotalInventoryCost:        decimal.Zero,
		TotalInventoryRetailValue: decimal.Zero,
	}
	for _, p := range products {
		switch ClassifyStock(p) {
		case StockLow:
			h.LowStockCount++
		case StockOutOfStock:
			h.OutOfStockCount++
		}
		h.TotalInventoryCost = h.TotalInventoryCost.Add(StockValue(p))
		h.TotalInventoryRetailValue = h.TotalInventoryRetailValue.Add(RetailValue(p))
	}
	h.PotentialProfit = h.TotalInventoryRetailValue.Sub(h.TotalInventoryCost)
	return h
}

// LowStock returns the products classified low or out of stock, in input order.
func LowStock(products []entity.Product) []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range products {
		if ClassifyStock(p) != StockNormal {
			out = append(out, p)
		}
	}
	return out
}

// ExpiringSoon returns products expiring strictly after now and strictly
// before now + horizonDays. Expired products are not included.
func ExpiringSoon(products []entity.Product, horizonDays int, now time.Time) []entity.Product {
	limit := now.AddDate(0, 0, horizonDays)
	out := make([]entity.Product, 0)
	for _, p := range products {
		if p.ExpirationDate == nil {
			continue
		}
		exp := *p.ExpirationDate
		if exp.After(now) && exp.Before(limit) {
			out = append(out, p)
		}
	}
	return out
}

// Expired returns products whose expiration date is at or before now.
func Expired(products []entity.Product, now time.Time) []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range products {
		if p.ExpirationDate != nil && !p.ExpirationDate.After(now) {
			out = append(out, p)
		}
	}
	return out
}

// CategoryValue 分类汇总
type CategoryValue struct {
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// CategoryDistribution groups products by category, summing stock × unit cost.
func CategoryDistribution(products []entity.Product) map[string]CategoryValue {
	dist := make(map[string]CategoryValue)
	for _, p := range products {
		cv, ok := dist[p.Category]
		if !ok {
			cv.Value = decimal.Zero
		}
		cv.Count++
		cv.Value = cv.Value.Add(StockValue(p))
		dist[p.Category] = cv
	}
	return dist
}
