package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

var (
	topProductHeaders = []string{"#", "Product", "SKU", "Quantity", "Revenue"}
	movementHeaders   = []string{"Date", "Stock In", "Stock Out"}
	categoryHeaders   = []string{"Category", "Products", "Value"}
	supplierHeaders   = []string{"Supplier", "Orders", "Open Orders", "Ordered Amount"}
)

// XLSX builds a workbook with one sheet per report section.
func XLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// 表头样式: 加粗
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, headerStyle: headerStyle}

	// 汇总
	summary := "Summary"
	f.SetSheetName("Sheet1", summary)
	inv, sales, cur := r.InventoryStats, r.SalesStats, r.Currency
	w.header(summary, []string{"Metric", "Value"})
	rows := [][]interface{}{
		{"Start date", r.DateRange.StartDate},
		{"End date", r.DateRange.EndDate},
		{"Total products", inv.TotalProducts},
		{"Low stock", inv.LowStockCount},
		{"Out of stock", inv.OutOfStockCount},
		{"Inventory cost", FormatMoney(inv.TotalInventoryCost, cur)},
		{"Retail value", FormatMoney(inv.TotalInventoryRetailValue, cur)},
		{"Potential profit", FormatMoney(inv.PotentialProfit, cur)},
		{"Orders", sales.TotalOrders},
		{"Fulfilled orders", sales.FulfilledOrders},
		{"Pending orders", sales.PendingOrders},
		{"Revenue", FormatMoney(sales.TotalRevenue, cur)},
		{"Average order value", FormatMoney(sales.AvgOrderValue, cur)},
		{"Generated at", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
	}
	for i, row := range rows {
		w.row(summary, i+2, row...)
	}
	w.widths(summary, 22, 24)

	sheet := "Top Products"
	f.NewSheet(sheet)
	w.header(sheet, topProductHeaders)
	for i, p := range r.TopProducts {
		w.row(sheet, i+2, i+1, p.Name, p.SKU, p.Quantity, p.Revenue.InexactFloat64())
	}
	w.widths(sheet, 6, 30, 16, 10, 14)

	sheet = "Movements"
	f.NewSheet(sheet)
	w.header(sheet, movementHeaders)
	for i, d := range r.MovementSeries.Dates {
		w.row(sheet, i+2, d, r.MovementSeries.StockIn[i], r.MovementSeries.StockOut[i])
	}
	w.widths(sheet, 14, 10, 10)

	sheet = "Categories"
	f.NewSheet(sheet)
	w.header(sheet, categoryHeaders)
	for i, name := range r.SortedCategories() {
		cv := r.CategoryDistribution[name]
		w.row(sheet, i+2, name, cv.Count, cv.Value.InexactFloat64())
	}
	w.widths(sheet, 24, 10, 14)

	sheet = "Suppliers"
	f.NewSheet(sheet)
	w.header(sheet, supplierHeaders)
	for i, s := range r.SupplierSpend {
		w.row(sheet, i+2, s.Name, s.OrderCount, s.OpenOrders, s.OrderedAmount.InexactFloat64())
	}
	w.widths(sheet, 30, 10, 12, 16)

	if w.err != nil {
		return nil, w.err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so the sheet code stays linear.
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (w *sheetWriter) header(sheet string, headers []string) {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		w.set(sheet, cell, h)
		if w.err == nil {
			w.err = w.f.SetCellStyle(sheet, cell, cell, w.headerStyle)
		}
	}
}

func (w *sheetWriter) row(sheet string, row int, values ...interface{}) {
	for i, v := range values {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.set(sheet, fmt.Sprintf("%s%d", col, row), v)
	}
}

func (w *sheetWriter) set(sheet, cell string, v interface{}) {
	if w.err == nil {
		w.err = w.f.SetCellValue(sheet, cell, v)
	}
}

func (w *sheetWriter) widths(sheet string, widths ...float64) {
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if w.err == nil {
			w.err = w.f.SetColWidth(sheet, col, col, width)
		}
	}
}
