package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/bitfantasy/nimo-inventory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func backends(t *testing.T) map[string]*repository.Repositories {
	return map[string]*repository.Repositories{
		"memory": repository.NewMemoryRepositories(0),
		"sqlite": repository.NewGormRepositories(testutil.SetupTestDB(t)),
	}
}

func TestLoad(t *testing.T) {
	for name, repos := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			res, err := Load(ctx, repos, fixedNow, nil)
			require.NoError(t, err)
			assert.False(t, res.Skipped)
			assert.Equal(t, len(suppliers), res.Suppliers)
			assert.Equal(t, len(products), res.Products)
			assert.Equal(t, len(salesOrders), res.SalesOrders)
			assert.Equal(t, len(purchaseOrders), res.PurchaseOrders)
			// three fulfilled orders with two lines each
			assert.Equal(t, len(movements)+6, res.Movements)

			orders, err := repos.Sales.List(ctx)
			require.NoError(t, err)
			require.Len(t, orders, len(salesOrders))
			// newest first
			assert.Equal(t, "SO-2024-006", orders[0].OrderNumber)
			assert.Len(t, orders[len(orders)-1].Items, 2)

			again, err := Load(ctx, repos, fixedNow, nil)
			require.NoError(t, err)
			assert.True(t, again.Skipped)
			all, err := repos.Product.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, len(products))
		})
	}
}

func TestLoad_FeedsReports(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewMemoryRepositories(0)
	_, err := Load(ctx, repos, fixedNow, nil)
	require.NoError(t, err)

	svc := service.NewServices(repos, service.Options{Now: func() time.Time { return fixedNow }})

	dashboard, err := svc.Report.Dashboard(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 3, dashboard.Sales.FulfilledOrders)
	assert.Equal(t, 1, dashboard.OpenPurchaseOrders)
	assert.Equal(t, len(suppliers), dashboard.SupplierCount)
	require.Len(t, dashboard.Expired, 1)
	assert.Equal(t, "FOOD-002", dashboard.Expired[0].SKU)
	require.Len(t, dashboard.ExpiringSoon, 1)
	assert.Equal(t, "FOOD-001", dashboard.ExpiringSoon[0].SKU)
	assert.Equal(t, 1, dashboard.Stock.OutOfStockCount)

	report, err := svc.Report.Report(ctx, service.DefaultWindow(fixedNow), 0)
	require.NoError(t, err)
	assert.NotEmpty(t, report.TopProducts)
	assert.NotEmpty(t, report.MovementSeries.Dates)
}
