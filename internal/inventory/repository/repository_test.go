package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name  string
	repos func(t *testing.T) *Repositories
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) *Repositories { return NewMemoryRepositories(0) }},
		{"sqlite", func(t *testing.T) *Repositories { return NewGormRepositories(testutil.SetupTestDB(t)) }},
	}
}

func TestStoreCRUD(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			first := &entity.Product{SKU: "A-1", Name: "Widget", Category: "Tools", CurrentStock: 5, UnitCost: decimal.NewFromInt(2)}
			second := &entity.Product{SKU: "A-2", Name: "Gadget", Category: "Tools"}
			require.NoError(t, repos.Product.Create(ctx, first))
			require.NoError(t, repos.Product.Create(ctx, second))
			assert.NotZero(t, first.ID)
			assert.Greater(t, second.ID, first.ID)

			got, err := repos.Product.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Widget", got.Name)
			assert.True(t, decimal.NewFromInt(2).Equal(got.UnitCost))

			got.CurrentStock = 9
			require.NoError(t, repos.Product.Update(ctx, got))
			again, err := repos.Product.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, 9, again.CurrentStock)

			list, err := repos.Product.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID)

			require.NoError(t, repos.Product.Delete(ctx, first.ID))
			list, err = repos.Product.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			_, err := repos.Supplier.Get(ctx, 404)
			assert.True(t, errors.Is(err, ErrNotFound))

			missing := &entity.Supplier{Name: "ghost"}
			missing.ID = 404
			assert.True(t, errors.Is(repos.Supplier.Update(ctx, missing), ErrNotFound))
			assert.True(t, errors.Is(repos.Supplier.Delete(ctx, 404), ErrNotFound))
		})
	}
}

func TestCreateIgnoresCallerID(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			s := &entity.Supplier{Name: "Fresh Foods"}
			s.ID = 77
			require.NoError(t, repos.Supplier.Create(ctx, s))
			assert.Equal(t, uint(1), s.ID)
		})
	}
}

func TestOrdersKeepItemsAndSortNewestFirst(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			older := &entity.SalesOrder{
				OrderNumber:  "SO-2024-001",
				CustomerName: "Acme",
				Status:       entity.SOStatusPending,
				OrderDate:    testutil.Date(2024, 1, 1),
				Items: []entity.SalesOrderItem{
					{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(5)},
					{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(7)},
				},
			}
			newer := &entity.SalesOrder{
				OrderNumber:  "SO-2024-002",
				CustomerName: "Globex",
				Status:       entity.SOStatusPending,
				OrderDate:    testutil.Date(2024, 2, 1),
				Items:        []entity.SalesOrderItem{{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
			}
			require.NoError(t, repos.Sales.Create(ctx, older))
			require.NoError(t, repos.Sales.Create(ctx, newer))

			list, err := repos.Sales.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "SO-2024-002", list[0].OrderNumber)
			assert.Len(t, list[1].Items, 2)

			got, err := repos.Sales.Get(ctx, older.ID)
			require.NoError(t, err)
			got.Status = entity.SOStatusProcessing
			require.NoError(t, repos.Sales.Update(ctx, got))

			got, err = repos.Sales.Get(ctx, older.ID)
			require.NoError(t, err)
			assert.Equal(t, entity.SOStatusProcessing, got.Status)
			assert.Len(t, got.Items, 2)
		})
	}
}

func TestMovementsNewestFirst(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				m := &entity.StockMovement{
					ProductID: 1,
					Type:      entity.MovementTypeIn,
					Quantity:  i + 1,
					Reason:    entity.ReasonReturn,
					Timestamp: base.Add(time.Duration(i) * time.Hour),
				}
				require.NoError(t, repos.Movement.Create(ctx, m))
			}

			list, err := repos.Movement.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, 3, list[0].Quantity)
			assert.Equal(t, 1, list[2].Quantity)
		})
	}
}

func TestNumberAllocator(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			for want := 1; want <= 3; want++ {
				got, err := repos.Numbers.Next(ctx, "SO", 2024)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}

			got, err := repos.Numbers.Next(ctx, "PO", 2024)
			require.NoError(t, err)
			assert.Equal(t, 1, got)

			got, err = repos.Numbers.Next(ctx, "SO", 2025)
			require.NoError(t, err)
			assert.Equal(t, 1, got)
		})
	}
}

func TestWithinTx(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			err := repos.WithinTx(ctx, func(tx *Repositories) error {
				return tx.Supplier.Create(ctx, &entity.Supplier{Name: "Fresh Foods"})
			})
			require.NoError(t, err)

			list, err := repos.Supplier.List(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repos := b.repos(t)

			sup := &entity.Supplier{Name: "Fresh Foods"}
			require.NoError(t, repos.Supplier.Create(ctx, sup))
			p := &entity.Product{SKU: "A-1", Name: "Widget", CurrentStock: 10}
			require.NoError(t, repos.Product.Create(ctx, p))

			boom := errors.New("boom")
			err := repos.WithinTx(ctx, func(tx *Repositories) error {
				got, err := tx.Product.Get(ctx, p.ID)
				if err != nil {
					return err
				}
				got.CurrentStock = 7
				if err := tx.Product.Update(ctx, got); err != nil {
					return err
				}
				if err := tx.Movement.Create(ctx, &entity.StockMovement{
					ProductID: p.ID, Type: entity.MovementTypeOut, Quantity: 3,
					Reason: entity.ReasonSalesOrder, Timestamp: time.Now(),
				}); err != nil {
					return err
				}
				if err := tx.Supplier.Delete(ctx, sup.ID); err != nil {
					return err
				}
				if _, err := tx.Numbers.Next(ctx, "SO", 2024); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := repos.Product.Get(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, 10, got.CurrentStock)

			movements, err := repos.Movement.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, movements)

			_, err = repos.Supplier.Get(ctx, sup.ID)
			assert.NoError(t, err)

			seq, err := repos.Numbers.Next(ctx, "SO", 2024)
			require.NoError(t, err)
			assert.Equal(t, 1, seq)
		})
	}
}

func TestMemoryLatencyHonoursContext(t *testing.T) {
	repos := NewMemoryRepositories(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := repos.Product.List(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories(0)

	p := &entity.Product{SKU: "A-1", Name: "Widget"}
	require.NoError(t, repos.Product.Create(ctx, p))
	p.Name = "mutated"

	got, err := repos.Product.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "SO-2024-007", FormatNumber("SO", 2024, 7))
	assert.Equal(t, "PO-2025-1234", FormatNumber("PO", 2025, 1234))
}
