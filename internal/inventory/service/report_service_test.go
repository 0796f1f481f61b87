package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/bitfantasy/nimo-inventory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReportData(t *testing.T, f *fixture) (widget, gadget *ProductView) {
	t.Helper()
	ctx := context.Background()
	widget = f.product(t, "W-1", 50, 10, "2", "5")
	gadget = f.product(t, "G-1", 5, 10, "10", "20")

	order, err := f.svc.Sales.Create(ctx, &CreateSalesOrderRequest{
		CustomerName: "Acme",
		Items: []OrderItemRequest{
			{ProductID: widget.ID, Quantity: 4},
			{ProductID: gadget.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	_, err = f.svc.Sales.UpdateStatus(ctx, order.ID, "", entity.SOStatusFulfilled)
	require.NoError(t, err)

	_, err = f.svc.Sales.Create(ctx, &CreateSalesOrderRequest{
		CustomerName: "Globex",
		Items:        []OrderItemRequest{{ProductID: widget.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	return widget, gadget
}

func TestReport(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	widget, gadget := seedReportData(t, f)

	w := analytics.NewDateWindow(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))
	report, err := f.svc.Report.Report(ctx, w, 0)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", report.DateRange.StartDate)
	assert.Equal(t, "2024-03-31", report.DateRange.EndDate)
	assert.Equal(t, 2, report.InventoryStats.TotalProducts)
	assert.Equal(t, 1, report.InventoryStats.LowStockCount)
	assert.Equal(t, 2, report.SalesStats.TotalOrders)
	assert.Equal(t, 1, report.SalesStats.FulfilledOrders)
	assert.Equal(t, 1, report.SalesStats.PendingOrders)
	assert.Equal(t, "60", report.SalesStats.TotalRevenue.String())
	assert.Equal(t, "60", report.SalesStats.AvgOrderValue.String())

	require.Len(t, report.TopProducts, 2)
	assert.Equal(t, gadget.ID, report.TopProducts[0].ProductID)
	assert.Equal(t, widget.ID, report.TopProducts[1].ProductID)

	assert.Equal(t, []string{"2024-03-15"}, report.MovementSeries.Dates)
	assert.Equal(t, []int{0}, report.MovementSeries.StockIn)
	assert.Equal(t, []int{6}, report.MovementSeries.StockOut)
	assert.Equal(t, 2, report.CategoryDistribution["General"].Count)

	empty, err := f.svc.Report.Report(ctx, analytics.NewDateWindow(testutil.Date(2023, 1, 1), testutil.Date(2023, 1, 31)), 0)
	require.NoError(t, err)
	assert.Zero(t, empty.SalesStats.TotalOrders)
	assert.True(t, empty.SalesStats.AvgOrderValue.IsZero())
	assert.Empty(t, empty.TopProducts)
}

func TestReportCacheInvalidatedByChanges(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	widget, _ := seedReportData(t, f)
	w := analytics.NewDateWindow(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))

	first, err := f.svc.Report.Report(ctx, w, 5)
	require.NoError(t, err)
	_, err = f.svc.Report.Report(ctx, w, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)

	_, err = f.svc.Stock.Record(ctx, "", &RecordMovementRequest{
		ProductID: widget.ID, Type: entity.MovementTypeIn, Quantity: 100, Reason: entity.ReasonReturn,
	})
	require.NoError(t, err)

	after, err := f.svc.Report.Report(ctx, w, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
	assert.True(t, after.InventoryStats.TotalInventoryCost.GreaterThan(first.InventoryStats.TotalInventoryCost))
}

func TestReportNotCachedUnderNewerVersion(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	widget, _ := seedReportData(t, f)
	w := analytics.NewDateWindow(testutil.Date(2024, 3, 1), testutil.Date(2024, 3, 31))

	// The stock change lands after the snapshot was taken but before Set.
	f.cache.beforeSet = func() {
		f.cache.beforeSet = nil
		_, err := f.svc.Product.Update(ctx, widget.ID, "", &UpdateProductRequest{CurrentStock: intPtr(1000)})
		require.NoError(t, err)
	}
	stale, err := f.svc.Report.Report(ctx, w, 5)
	require.NoError(t, err)

	fresh, err := f.svc.Report.Report(ctx, w, 5)
	require.NoError(t, err)
	assert.Zero(t, f.cache.hits)
	assert.True(t, fresh.InventoryStats.TotalInventoryCost.GreaterThan(stale.InventoryStats.TotalInventoryCost))

	again, err := f.svc.Report.Report(ctx, w, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits)
	assert.True(t, again.InventoryStats.TotalInventoryCost.Equal(fresh.InventoryStats.TotalInventoryCost))
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	seedReportData(t, f)

	_, err := f.svc.Product.Create(ctx, &CreateProductRequest{
		SKU: "M-1", Name: "Milk", CurrentStock: 20, ExpirationDate: strPtr("2024-03-20"),
	})
	require.NoError(t, err)
	_, err = f.svc.Product.Create(ctx, &CreateProductRequest{
		SKU: "Y-1", Name: "Yoghurt", CurrentStock: 20, ExpirationDate: strPtr("2024-03-01"),
	})
	require.NoError(t, err)
	sup := f.supplier(t, "Fresh Foods")
	_, err = f.svc.Purchase.Create(ctx, &CreatePurchaseOrderRequest{
		SupplierID: sup.ID, Items: []OrderItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	d, err := f.svc.Report.Dashboard(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Stock.TotalProducts)
	assert.Equal(t, 30, d.HorizonDays)
	require.Len(t, d.ExpiringSoon, 1)
	assert.Equal(t, "M-1", d.ExpiringSoon[0].SKU)
	require.Len(t, d.Expired, 1)
	assert.Equal(t, "Y-1", d.Expired[0].SKU)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "G-1", d.LowStock[0].SKU)
	assert.Len(t, d.RecentMovements, 2)
	assert.Equal(t, 1, d.SupplierCount)
	assert.Equal(t, 1, d.OpenPurchaseOrders)
	assert.Equal(t, 1, d.Sales.PendingOrders)

	short, err := f.svc.Report.Dashboard(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, short.ExpiringSoon)
}

func TestExportArchivesReport(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	seedReportData(t, f)
	w := DefaultWindow(fixedNow)

	res, err := f.svc.Report.Export(ctx, w, 0, "JSON")
	require.NoError(t, err)
	assert.Equal(t, "inventory-report-2024-03-15.json", res.Name)
	assert.Equal(t, "reports/inventory-report-2024-03-15.json", res.ObjectName)
	assert.Equal(t, []string{"inventory-report-2024-03-15.json"}, f.archiver.files)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(res.Data, &doc))
	assert.Equal(t, "2024-01-01", doc["date_range"].(map[string]interface{})["start_date"])
	assert.Equal(t, "2024-03-31", doc["date_range"].(map[string]interface{})["end_date"])

	f.archiver.err = errors.New("bucket unavailable")
	res, err = f.svc.Report.Export(ctx, w, 0, "md")
	require.NoError(t, err)
	assert.Empty(t, res.ObjectName)

	_, err = f.svc.Report.Export(ctx, w, 0, "pdf")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDefaultWindow(t *testing.T) {
	w := DefaultWindow(fixedNow)
	assert.Equal(t, testutil.Date(2024, 1, 1), w.Start)
	assert.Equal(t, "2024-03-31", w.End.Format("2006-01-02"))
	assert.True(t, w.Contains(testutil.Date(2024, 3, 31).Add(23*time.Hour)))

	// 2024-04-01 03:00 at UTC+8 is still March in UTC.
	shanghai := time.FixedZone("CST", 8*3600)
	w = DefaultWindow(time.Date(2024, 4, 1, 3, 0, 0, 0, shanghai))
	assert.Equal(t, testutil.Date(2024, 1, 1), w.Start)
	assert.Equal(t, time.UTC, w.End.Location())
	assert.Equal(t, "2024-03-31", w.End.Format("2006-01-02"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 2, 29), d)

	d, err = ParseDate("2024-02-29T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = ParseDate("29/02/2024")
	assert.ErrorIs(t, err, ErrValidation)
}
