package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCreateValidation(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateProductRequest
	}{
		{"missing sku", CreateProductRequest{Name: "Widget"}},
		{"missing name", CreateProductRequest{SKU: "W-1"}},
		{"negative stock", CreateProductRequest{SKU: "W-1", Name: "Widget", CurrentStock: -1}},
		{"negative reorder level", CreateProductRequest{SKU: "W-1", Name: "Widget", ReorderLevel: -1}},
		{"negative cost", CreateProductRequest{SKU: "W-1", Name: "Widget", UnitCost: decimal.NewFromInt(-1)}},
		{"bad expiration", CreateProductRequest{SKU: "W-1", Name: "Widget", ExpirationDate: strPtr("next week")}},
		{"unknown supplier", CreateProductRequest{SKU: "W-1", Name: "Widget", SupplierID: uintPtr(99)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Product.Create(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestProductCreateDuplicateSKU(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	f.product(t, "W-1", 10, 2, "1", "2")

	_, err := f.svc.Product.Create(context.Background(), &CreateProductRequest{SKU: "w-1", Name: "Other"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProductCreateAndGet(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	sup := f.supplier(t, "Fresh Foods")

	created, err := f.svc.Product.Create(ctx, &CreateProductRequest{
		SKU:            "MILK-1",
		Name:           "Milk",
		Category:       "Dairy",
		CurrentStock:   4,
		ReorderLevel:   5,
		UnitCost:       decimal.RequireFromString("0.80"),
		SellingPrice:   decimal.RequireFromString("1.50"),
		SupplierID:     &sup.ID,
		ExpirationDate: strPtr("2024-03-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, analytics.StockLow, created.StockStatus)

	got, err := f.svc.Product.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fresh Foods", got.SupplierName)
	require.NotNil(t, got.ExpirationDate)
	assert.Equal(t, "2024-03-20", got.ExpirationDate.Format("2006-01-02"))

	_, err = f.svc.Product.Get(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductListFilterAndCategories(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	f.product(t, "W-1", 10, 2, "1", "2")
	f.product(t, "W-2", 0, 2, "1", "2")
	_, err := f.svc.Product.Create(ctx, &CreateProductRequest{SKU: "A-1", Name: "Apple", Category: "Fruit"})
	require.NoError(t, err)

	out, err := f.svc.Product.List(ctx, analytics.ProductFilter{StockLevel: analytics.StockOutOfStock})
	require.NoError(t, err)
	require.Len(t, out, 2)

	categories, err := f.svc.Product.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fruit", "General"}, categories)

	low, err := f.svc.Product.LowStock(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 2)
}

func TestProductUpdateLogsStockAdjustment(t *testing.T) {
	for name, newRepos := range backends() {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, newRepos(t))
			ctx := context.Background()
			p := f.product(t, "W-1", 10, 2, "1", "2")
			f.drainEvents()

			updated, err := f.svc.Product.Update(ctx, p.ID, "u-1", &UpdateProductRequest{
				Name:         strPtr("Widget v2"),
				CurrentStock: intPtr(4),
			})
			require.NoError(t, err)
			assert.Equal(t, "Widget v2", updated.Name)
			assert.Equal(t, 4, updated.CurrentStock)

			history, err := f.svc.Stock.ListByProduct(ctx, p.ID)
			require.NoError(t, err)
			require.Len(t, history, 1)
			m := history[0]
			assert.Equal(t, entity.MovementTypeOut, m.Type)
			assert.Equal(t, 6, m.Quantity)
			assert.Equal(t, entity.ReasonStockAdjustment, m.Reason)
			assert.Equal(t, "u-1", m.UserID)
			assert.True(t, strings.HasPrefix(m.ReferenceID, "ADJ-"))
			assert.Equal(t, 4, f.stockOf(t, p.ID))

			evs := f.drainEvents()
			require.NotEmpty(t, evs)
			assert.Equal(t, "stock_movement", evs[0].EventType)
		})
	}
}

func TestProductUpdateWithoutStockChange(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	p := f.product(t, "W-1", 10, 2, "1", "2")

	_, err := f.svc.Product.Update(ctx, p.ID, "", &UpdateProductRequest{ReorderLevel: intPtr(3), CurrentStock: intPtr(10)})
	require.NoError(t, err)

	history, err := f.svc.Stock.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.svc.Product.Update(ctx, p.ID, "", &UpdateProductRequest{CurrentStock: intPtr(-5)})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 10, f.stockOf(t, p.ID))

	_, err = f.svc.Product.Update(ctx, 404, "", &UpdateProductRequest{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductUpdateClearsSupplierAndExpiry(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	sup := f.supplier(t, "Fresh Foods")
	p, err := f.svc.Product.Create(ctx, &CreateProductRequest{
		SKU: "M-1", Name: "Milk", SupplierID: &sup.ID, ExpirationDate: strPtr("2024-04-01"),
	})
	require.NoError(t, err)

	updated, err := f.svc.Product.Update(ctx, p.ID, "", &UpdateProductRequest{
		SupplierID:     uintPtr(0),
		ExpirationDate: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.SupplierID)
	assert.Nil(t, updated.ExpirationDate)
}

func TestProductDeleteKeepsHistory(t *testing.T) {
	f := newFixture(t, repository.NewMemoryRepositories(0))
	ctx := context.Background()
	p := f.product(t, "W-1", 10, 2, "1", "2")
	_, err := f.svc.Stock.Record(ctx, "", &RecordMovementRequest{
		ProductID: p.ID, Type: entity.MovementTypeIn, Quantity: 1, Reason: entity.ReasonReturn,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Product.Delete(ctx, p.ID))
	assert.ErrorIs(t, f.svc.Product.Delete(ctx, p.ID), repository.ErrNotFound)

	history, err := f.svc.Stock.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, analytics.UnknownProduct, history[0].ProductName)
	assert.Equal(t, analytics.UnknownSKU, history[0].ProductSKU)
}
