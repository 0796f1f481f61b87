package analytics

import (
	"strings"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
)

// ProductFilter 产品列表筛选条件，空字段不参与筛选
type ProductFilter struct {
	Search     string
	Category   string
	StockLevel StockStatus
	SupplierID *uint
}

type MovementFilter struct {
	Search    string
	Type      string
	Reason    string
	ProductID *uint
	Window    Window
}

type OrderFilter struct {
	Search string
	Status string
	Window Window
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func FilterProducts(products []entity.Product, f ProductFilter) []entity.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!containsFold(p.Name, search) &&
			!containsFold(p.SKU, search) &&
			!containsFold(p.Category, search) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.StockLevel != "" && ClassifyStock(p) != f.StockLevel {
			continue
		}
		if f.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *f.SupplierID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterMovements matches the search text against the movement's product
// name and sku, its reason and its reference.
func FilterMovements(movements []entity.StockMovement, products []entity.Product, f MovementFilter) []entity.StockMovement {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	index := indexProducts(products)
	out := make([]entity.StockMovement, 0, len(movements))
	for _, m := range movements {
		if search != "" {
			name, sku := "", ""
			if p, ok := index[m.ProductID]; ok {
				name, sku = p.Name, p.SKU
			}
			if !containsFold(name, search) &&
				!containsFold(sku, search) &&
				!containsFold(m.Reason, search) &&
				!containsFold(m.ReferenceID, search) {
				continue
			}
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Reason != "" && m.Reason != f.Reason {
			continue
		}
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if !f.Window.Contains(m.Timestamp) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func FilterSalesOrders(orders []entity.SalesOrder, f OrderFilter) []entity.SalesOrder {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]entity.SalesOrder, 0, len(orders))
	for _, o := range orders {
		if search != "" && !containsFold(o.CustomerName, search) && !containsFold(o.OrderNumber, search) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if !f.Window.Contains(o.OrderDate) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func FilterSuppliers(suppliers []entity.Supplier, search string) []entity.Supplier {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return suppliers
	}
	out := make([]entity.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if containsFold(s.Name, search) || containsFold(s.ContactPerson, search) || containsFold(s.Email, search) {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories in first-seen order.
func Categories(products []entity.Product) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
