package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
)

// MemoryStore keeps a process-local collection. Values are copied in and out so
// callers never share state with the store. Ids come from a per-store sequence.
type MemoryStore[T any, PT recordPtr[T]] struct {
	mu      sync.RWMutex
	items   map[uint]T
	nextID  uint
	latency time.Duration
	less    func(a, b *T) bool
	now     func() time.Time
}

// NewMemoryStore creates a store whose List is ordered by less (by id when nil).
// A non-zero latency delays every call to simulate a remote backend.
func NewMemoryStore[T any, PT recordPtr[T]](latency time.Duration, less func(a, b *T) bool) *MemoryStore[T, PT] {
	return &MemoryStore[T, PT]{
		items:   make(map[uint]T),
		latency: latency,
		less:    less,
		now:     time.Now,
	}
}

func (s *MemoryStore[T, PT]) delay(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MemoryStore[T, PT]) List(ctx context.Context) ([]T, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	items := make([]T, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	s.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		if s.less != nil {
			return s.less(&items[i], &items[j])
		}
		return PT(&items[i]).GetID() < PT(&items[j]).GetID()
	})
	return items, nil
}

func (s *MemoryStore[T, PT]) Get(ctx context.Context, id uint) (*T, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemoryStore[T, PT]) Create(ctx context.Context, item *T) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	PT(item).SetID(s.nextID)
	PT(item).Stamp(s.now())
	s.items[s.nextID] = *item
	return nil
}

func (s *MemoryStore[T, PT]) Update(ctx context.Context, item *T) error {
	_, err := s.update(ctx, item)
	return err
}

func (s *MemoryStore[T, PT]) update(ctx context.Context, item *T) (T, error) {
	var prev T
	if err := s.delay(ctx); err != nil {
		return prev, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := PT(item).GetID()
	prev, ok := s.items[id]
	if !ok {
		return prev, ErrNotFound
	}
	PT(item).Stamp(s.now())
	s.items[id] = *item
	return prev, nil
}

func (s *MemoryStore[T, PT]) Delete(ctx context.Context, id uint) error {
	_, err := s.remove(ctx, id)
	return err
}

func (s *MemoryStore[T, PT]) remove(ctx context.Context, id uint) (T, error) {
	var prev T
	if err := s.delay(ctx); err != nil {
		return prev, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.items[id]
	if !ok {
		return prev, ErrNotFound
	}
	delete(s.items, id)
	return prev, nil
}

// restore puts back the previous value of id, or drops it when prev is nil.
func (s *MemoryStore[T, PT]) restore(id uint, prev *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev == nil {
		delete(s.items, id)
		return
	}
	s.items[id] = *prev
}

// undoLog collects the compensating writes of a memory transaction.
type undoLog struct {
	ops []func()
}

func (u *undoLog) push(op func()) {
	u.ops = append(u.ops, op)
}

// rollback applies the compensating writes newest first.
func (u *undoLog) rollback() {
	for i := len(u.ops) - 1; i >= 0; i-- {
		u.ops[i]()
	}
	u.ops = nil
}

// txStore is the view of a MemoryStore handed to a WithinTx body. Every
// successful write records how to undo it.
type txStore[T any, PT recordPtr[T]] struct {
	*MemoryStore[T, PT]
	undo *undoLog
}

func withUndo[T any, PT recordPtr[T]](s *MemoryStore[T, PT], undo *undoLog) *txStore[T, PT] {
	return &txStore[T, PT]{MemoryStore: s, undo: undo}
}

func (s *txStore[T, PT]) Create(ctx context.Context, item *T) error {
	if err := s.MemoryStore.Create(ctx, item); err != nil {
		return err
	}
	id := PT(item).GetID()
	s.undo.push(func() { s.restore(id, nil) })
	return nil
}

func (s *txStore[T, PT]) Update(ctx context.Context, item *T) error {
	prev, err := s.update(ctx, item)
	if err != nil {
		return err
	}
	id := PT(item).GetID()
	s.undo.push(func() { s.restore(id, &prev) })
	return nil
}

func (s *txStore[T, PT]) Delete(ctx context.Context, id uint) error {
	prev, err := s.remove(ctx, id)
	if err != nil {
		return err
	}
	s.undo.push(func() { s.restore(id, &prev) })
	return nil
}

type memoryNumberAllocator struct {
	mu   sync.Mutex
	seqs map[string]int
}

func (a *memoryNumberAllocator) Next(ctx context.Context, prefix string, year int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	name := fmt.Sprintf("%s-%d", prefix, year)
	a.seqs[name]++
	return a.seqs[name], nil
}

func (a *memoryNumberAllocator) release(prefix string, year int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seqs[fmt.Sprintf("%s-%d", prefix, year)]--
}

type txNumbers struct {
	*memoryNumberAllocator
	undo *undoLog
}

func (a *txNumbers) Next(ctx context.Context, prefix string, year int) (int, error) {
	seq, err := a.memoryNumberAllocator.Next(ctx, prefix, year)
	if err != nil {
		return 0, err
	}
	a.undo.push(func() { a.release(prefix, year) })
	return seq, nil
}

// NewMemoryRepositories 创建内存仓库集合。WithinTx 串行执行，fn 返回错误时撤销其全部写入。
func NewMemoryRepositories(latency time.Duration) *Repositories {
	product := NewMemoryStore[entity.Product](latency, nil)
	supplier := NewMemoryStore[entity.Supplier](latency, nil)
	movement := NewMemoryStore[entity.StockMovement](latency, func(a, b *entity.StockMovement) bool {
		if a.Timestamp.Equal(b.Timestamp) {
			return a.ID > b.ID
		}
		return a.Timestamp.After(b.Timestamp)
	})
	sales := NewMemoryStore[entity.SalesOrder](latency, func(a, b *entity.SalesOrder) bool {
		if a.OrderDate.Equal(b.OrderDate) {
			return a.ID > b.ID
		}
		return a.OrderDate.After(b.OrderDate)
	})
	purchase := NewMemoryStore[entity.PurchaseOrder](latency, func(a, b *entity.PurchaseOrder) bool {
		if a.OrderDate.Equal(b.OrderDate) {
			return a.ID > b.ID
		}
		return a.OrderDate.After(b.OrderDate)
	})
	numbers := &memoryNumberAllocator{seqs: make(map[string]int)}

	repos := &Repositories{
		Product:  product,
		Supplier: supplier,
		Movement: movement,
		Sales:    sales,
		Purchase: purchase,
		Numbers:  numbers,
	}

	var txMu sync.Mutex
	repos.tx = func(ctx context.Context, fn func(repos *Repositories) error) error {
		txMu.Lock()
		defer txMu.Unlock()

		undo := &undoLog{}
		inner := &Repositories{
			Product:  withUndo(product, undo),
			Supplier: withUndo(supplier, undo),
			Movement: withUndo(movement, undo),
			Sales:    withUndo(sales, undo),
			Purchase: withUndo(purchase, undo),
			Numbers:  &txNumbers{memoryNumberAllocator: numbers, undo: undo},
		}
		if err := fn(inner); err != nil {
			undo.rollback()
			return err
		}
		return nil
	}
	return repos
}
