// Package export renders inventory reports as downloadable documents.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/shopspring/decimal"
)

// 导出格式
const (
	FormatJSON     = "json"
	FormatXLSX     = "xlsx"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

var Formats = []string{FormatJSON, FormatXLSX, FormatMarkdown, FormatHTML}

var contentTypes = map[string]string{
	FormatJSON:     "application/json; charset=utf-8",
	FormatXLSX:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatHTML:     "text/html; charset=utf-8",
}

// DateRange is the calendar window a report covers.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Report 报表快照
type Report struct {
	DateRange            DateRange                          `json:"date_range"`
	InventoryStats       analytics.StockHealth              `json:"inventory_stats"`
	SalesStats           analytics.SalesStats               `json:"sales_stats"`
	TopProducts          []analytics.ProductRevenue         `json:"top_products"`
	MovementSeries       analytics.MovementSeries           `json:"movement_series"`
	CategoryDistribution map[string]analytics.CategoryValue `json:"category_distribution"`
	SupplierSpend        []analytics.SupplierSpend          `json:"supplier_spend"`
	Currency             string                             `json:"currency"`
	GeneratedAt          time.Time                          `json:"generated_at"`
}

// SortedCategories returns the category names in alphabetical order.
func (r *Report) SortedCategories() []string {
	names := make([]string, 0, len(r.CategoryDistribution))
	for name := range r.CategoryDistribution {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// File is a rendered report ready to be served or archived.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func IsSupported(format string) bool {
	_, ok := contentTypes[format]
	return ok
}

// Render encodes r in the requested format.
func Render(r *Report, format string) (*File, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = JSON(r)
	case FormatXLSX:
		data, err = XLSX(r)
	case FormatMarkdown:
		data = []byte(Markdown(r))
	case FormatHTML:
		data, err = HTML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	return &File{
		Name:        fmt.Sprintf("inventory-report-%s.%s", r.GeneratedAt.Format("2006-01-02"), format),
		ContentType: contentTypes[format],
		Data:        data,
	}, nil
}

// JSON 缩进格式，与页面下载的文件一致
func JSON(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FormatMoney displays amount in currency, e.g. $1,234.50. Unknown
// currencies fall back to the plain decimal with two places.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2)
	}
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}
