package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the report as GitHub-flavoured markdown tables.
func Markdown(r *Report) string {
	var b strings.Builder
	cur := r.Currency

	fmt.Fprintf(&b, "# Inventory Report\n\n")
	fmt.Fprintf(&b, "Period: %s to %s  \nGenerated: %s\n\n",
		r.DateRange.StartDate, r.DateRange.EndDate, r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))

	inv := r.InventoryStats
	b.WriteString("## Inventory\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Total products | %d |\n", inv.TotalProducts)
	fmt.Fprintf(&b, "| Low stock | %d |\n", inv.LowStockCount)
	fmt.Fprintf(&b, "| Out of stock | %d |\n", inv.OutOfStockCount)
	fmt.Fprintf(&b, "| Inventory cost | %s |\n", FormatMoney(inv.TotalInventoryCost, cur))
	fmt.Fprintf(&b, "| Retail value | %s |\n", FormatMoney(inv.TotalInventoryRetailValue, cur))
	fmt.Fprintf(&b, "| Potential profit | %s |\n\n", FormatMoney(inv.PotentialProfit, cur))

	sales := r.SalesStats
	b.WriteString("## Sales\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Orders | %d |\n", sales.TotalOrders)
	fmt.Fprintf(&b, "| Fulfilled | %d |\n", sales.FulfilledOrders)
	fmt.Fprintf(&b, "| Pending | %d |\n", sales.PendingOrders)
	fmt.Fprintf(&b, "| Revenue | %s |\n", FormatMoney(sales.TotalRevenue, cur))
	fmt.Fprintf(&b, "| Average order value | %s |\n\n", FormatMoney(sales.AvgOrderValue, cur))

	b.WriteString("## Top Products\n\n")
	if len(r.TopProducts) == 0 {
		b.WriteString("No fulfilled sales in this period.\n\n")
	} else {
		b.WriteString("| # | Product | SKU | Quantity | Revenue |\n|---:|---|---|---:|---:|\n")
		for i, p := range r.TopProducts {
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %s |\n",
				i+1, escapeCell(p.Name), escapeCell(p.SKU), p.Quantity, FormatMoney(p.Revenue, cur))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Stock Movements\n\n")
	if len(r.MovementSeries.Dates) == 0 {
		b.WriteString("No movements in this period.\n\n")
	} else {
		b.WriteString("| Date | In | Out |\n|---|---:|---:|\n")
		for i, d := range r.MovementSeries.Dates {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", d, r.MovementSeries.StockIn[i], r.MovementSeries.StockOut[i])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Categories\n\n")
	b.WriteString("| Category | Products | Value |\n|---|---:|---:|\n")
	for _, name := range r.SortedCategories() {
		cv := r.CategoryDistribution[name]
		fmt.Fprintf(&b, "| %s | %d | %s |\n", escapeCell(name), cv.Count, FormatMoney(cv.Value, cur))
	}
	b.WriteString("\n")

	if len(r.SupplierSpend) > 0 {
		b.WriteString("## Suppliers\n\n")
		b.WriteString("| Supplier | Orders | Open | Ordered |\n|---|---:|---:|---:|\n")
		for _, s := range r.SupplierSpend {
			fmt.Fprintf(&b, "| %s | %d | %d | %s |\n",
				escapeCell(s.Name), s.OrderCount, s.OpenOrders, FormatMoney(s.OrderedAmount, cur))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTML converts the markdown rendering into a standalone page.
func HTML(r *Report) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Inventory Report %s - %s</title>\n", r.DateRange.StartDate, r.DateRange.EndDate)
	page.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse;margin-bottom:1.5em}" +
		"th,td{border:1px solid #ccc;padding:4px 10px}th{background:#D9E1F2}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
