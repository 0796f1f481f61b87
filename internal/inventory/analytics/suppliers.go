package analytics

import (
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/shopspring/decimal"
)

// SupplierSpend 供应商采购汇总
type SupplierSpend struct {
	SupplierID    uint            `json:"supplier_id"`
	Name          string          `json:"name"`
	OrderCount    int             `json:"order_count"`
	OpenOrders    int             `json:"open_orders"`
	OrderedAmount decimal.Decimal `json:"ordered_amount"`
}

// SupplierSpendSummary aggregates purchase orders per supplier, excluding
// cancelled orders from the amount. Rows follow first appearance.
func SupplierSpendSummary(orders []entity.PurchaseOrder, suppliers []entity.Supplier) []SupplierSpend {
	names := make(map[uint]string, len(suppliers))
	for _, s := range suppliers {
		names[s.ID] = s.Name
	}

	pos := make(map[uint]int)
	out := make([]SupplierSpend, 0)
	for _, o := range orders {
		i, ok := pos[o.SupplierID]
		if !ok {
			name, found := names[o.SupplierID]
			if !found {
				name = UnknownSupplier
			}
			out = append(out, SupplierSpend{
				SupplierID:    o.SupplierID,
				Name:          name,
				OrderedAmount: decimal.Zero,
			})
			i = len(out) - 1
			pos[o.SupplierID] = i
		}
		out[i].OrderCount++
		switch o.Status {
		case entity.POStatusOrdered:
			out[i].OpenOrders++
			out[i].OrderedAmount = out[i].OrderedAmount.Add(o.TotalAmount)
		case entity.POStatusReceived:
			out[i].OrderedAmount = out[i].OrderedAmount.Add(o.TotalAmount)
		}
	}
	return out
}

// SupplierName resolves a supplier id with the UnknownSupplier fallback.
func SupplierName(suppliers []entity.Supplier, id uint) string {
	for _, s := range suppliers {
		if s.ID == id {
			return s.Name
		}
	}
	return UnknownSupplier
}
