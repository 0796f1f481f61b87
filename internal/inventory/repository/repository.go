package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Record is implemented by every stored entity through entity.Model.
type Record interface {
	GetID() uint
	SetID(id uint)
	Stamp(now time.Time)
}

type recordPtr[T any] interface {
	*T
	Record
}

// Store is the collection capability every entity repository exposes.
// Get, Update and Delete return ErrNotFound for an unknown id.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id uint) error
}

// NumberAllocator issues the per-prefix, per-year sequence behind order numbers.
type NumberAllocator interface {
	Next(ctx context.Context, prefix string, year int) (int, error)
}

// Transactor runs fn against repositories bound to a single unit of work.
type Transactor func(ctx context.Context, fn func(repos *Repositories) error) error

// Repositories 库存仓库集合
type Repositories struct {
	Product  Store[entity.Product]
	Supplier Store[entity.Supplier]
	Movement Store[entity.StockMovement]
	Sales    Store[entity.SalesOrder]
	Purchase Store[entity.PurchaseOrder]
	Numbers  NumberAllocator

	tx Transactor
}

// WithinTx runs fn atomically when the backend supports it. The repositories
// handed to fn must be used instead of r for the duration of the call.
func (r *Repositories) WithinTx(ctx context.Context, fn func(repos *Repositories) error) error {
	if r.tx == nil {
		return fn(r)
	}
	return r.tx(ctx, fn)
}

// FormatNumber renders a document number such as SO-2024-007.
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}
