package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/bitfantasy/nimo-inventory/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// memoryCache is a ReportCache with the same version semantics as the redis one.
type memoryCache struct {
	mu      sync.Mutex
	version int64
	entries map[string][]byte
	hits    int
	// beforeSet runs at the start of every Set, outside the lock.
	beforeSet func()
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func cacheKey(version int64, name string) string {
	return fmt.Sprintf("v%d:%s", version, name)
}

func (c *memoryCache) Version(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, nil
}

func (c *memoryCache) Get(_ context.Context, version int64, name string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[cacheKey(version, name)]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dst)
}

func (c *memoryCache) Set(_ context.Context, version int64, name string, value interface{}) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[cacheKey(version, name)] = data
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	return nil
}

type fakeArchiver struct {
	files []string
	err   error
}

func (a *fakeArchiver) Archive(_ context.Context, filename, _ string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.files = append(a.files, filename)
	return "reports/" + filename, nil
}

type fixture struct {
	svc      *Services
	repos    *repository.Repositories
	cache    *memoryCache
	archiver *fakeArchiver
	hub      *events.Hub
	events   chan events.Event
	now      time.Time
}

func backends() map[string]func(t *testing.T) *repository.Repositories {
	return map[string]func(t *testing.T) *repository.Repositories{
		"memory": func(t *testing.T) *repository.Repositories { return repository.NewMemoryRepositories(0) },
		"sqlite": func(t *testing.T) *repository.Repositories {
			return repository.NewGormRepositories(testutil.SetupTestDB(t))
		},
	}
}

func newFixture(t *testing.T, repos *repository.Repositories) *fixture {
	t.Helper()
	f := &fixture{
		repos:    repos,
		cache:    newMemoryCache(),
		archiver: &fakeArchiver{},
		hub:      events.NewHub(nil),
		events:   make(chan events.Event, 64),
		now:      fixedNow,
	}
	f.hub.Register(&events.Client{ID: "test", Events: f.events})
	f.svc = NewServices(repos, Options{
		Cache:    f.cache,
		Archiver: f.archiver,
		Hub:      f.hub,
		Now:      func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) drainEvents() []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-f.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func (f *fixture) supplier(t *testing.T, name string) *entity.Supplier {
	t.Helper()
	s, err := f.svc.Supplier.Create(context.Background(), &CreateSupplierRequest{Name: name, Email: "orders@example.com"})
	require.NoError(t, err)
	return s
}

func (f *fixture) product(t *testing.T, sku string, stock, reorder int, cost, price string) *ProductView {
	t.Helper()
	p, err := f.svc.Product.Create(context.Background(), &CreateProductRequest{
		SKU:          sku,
		Name:         "Product " + sku,
		Category:     "General",
		CurrentStock: stock,
		ReorderLevel: reorder,
		UnitCost:     decimal.RequireFromString(cost),
		SellingPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stockOf(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.repos.Product.Get(context.Background(), id)
	require.NoError(t, err)
	return p.CurrentStock
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func uintPtr(u uint) *uint { return &u }
