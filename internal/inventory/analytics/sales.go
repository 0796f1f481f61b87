package analytics

import (
	"sort"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/shopspring/decimal"
)

const (
	DefaultTopN = 10

	UnknownProduct  = "Unknown Product"
	UnknownSKU      = "N/A"
	UnknownSupplier = "Unknown Supplier"
)

// SalesStats 销售业绩
type SalesStats struct {
	TotalOrders     int             `json:"total_orders"`
	FulfilledOrders int             `json:"fulfilled_orders"`
	PendingOrders   int             `json:"pending_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
}

func salesOrderDate(o entity.SalesOrder) time.Time { return o.OrderDate }

// SalesPerformance summarises the orders placed inside w. Revenue counts
// fulfilled orders only.
func SalesPerformance(orders []entity.SalesOrder, w Window) SalesStats {
	inWindow := WindowFilter(orders, salesOrderDate, w)
	stats := SalesStats{
		TotalOrders:   len(inWindow),
		TotalRevenue:  decimal.Zero,
		AvgOrderValue: decimal.Zero,
	}
	for _, o := range inWindow {
		switch o.Status {
		case entity.SOStatusFulfilled:
			stats.FulfilledOrders++
			stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
		case entity.SOStatusPending, entity.SOStatusProcessing:
			stats.PendingOrders++
		}
	}
	if stats.FulfilledOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue.Div(decimal.NewFromInt(int64(stats.FulfilledOrders)))
	}
	return stats
}

// FilterSalesOrdersByWindow keeps orders whose order date falls in w.
func FilterSalesOrdersByWindow(orders []entity.SalesOrder, w Window) []entity.SalesOrder {
	return WindowFilter(orders, salesOrderDate, w)
}

// OrderTotal sums the line subtotals of a sales order.
func OrderTotal(items []entity.SalesOrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// PurchaseTotal sums the line subtotals of a purchase order.
func PurchaseTotal(items []entity.PurchaseOrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ProductRevenue 产品销售排行项
type ProductRevenue struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// TopProductsByRevenue ranks products by revenue over fulfilled orders.
// Ties keep first-appearance order; n <= 0 means DefaultTopN.
func TopProductsByRevenue(orders []entity.SalesOrder, products []entity.Product, n int) []ProductRevenue {
	if n <= 0 {
		n = DefaultTopN
	}
	index := indexProducts(products)

	pos := make(map[uint]int)
	ranking := make([]ProductRevenue, 0)
	for _, o := range orders {
		if o.Status != entity.SOStatusFulfilled {
			continue
		}
		for _, item := range o.Items {
			i, ok := pos[item.ProductID]
			if !ok {
				name, sku := lookupProduct(index, item.ProductID)
				ranking = append(ranking, ProductRevenue{
					ProductID: item.ProductID,
					Name:      name,
					SKU:       sku,
					Revenue:   decimal.Zero,
				})
				i = len(ranking) - 1
				pos[item.ProductID] = i
			}
			ranking[i].Quantity += item.Quantity
			ranking[i].Revenue = ranking[i].Revenue.Add(item.Subtotal())
		}
	}

	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Revenue.GreaterThan(ranking[b].Revenue)
	})
	if len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

func indexProducts(products []entity.Product) map[uint]*entity.Product {
	index := make(map[uint]*entity.Product, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index
}

func lookupProduct(index map[uint]*entity.Product, id uint) (name, sku string) {
	if p, ok := index[id]; ok {
		return p.Name, p.SKU
	}
	return UnknownProduct, UnknownSKU
}

// ProductName resolves a product id against the snapshot, falling back to
// UnknownProduct / UnknownSKU for ids that are no longer present.
func ProductName(products []entity.Product, id uint) (name, sku string) {
	for _, p := range products {
		if p.ID == id {
			return p.Name, p.SKU
		}
	}
	return UnknownProduct, UnknownSKU
}
