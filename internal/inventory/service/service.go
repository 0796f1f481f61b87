package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"go.uber.org/zap"
)

// Options 服务依赖，零值字段使用默认实现
type Options struct {
	Cache    ReportCache
	Archiver ReportArchiver
	Hub      *events.Hub
	Logger   *zap.Logger
	Now      func() time.Time

	Currency            string
	ExpiringHorizonDays int
	TopProducts         int
	RecentMovements     int
}

// Services 库存服务集合
type Services struct {
	Product  *ProductService
	Supplier *SupplierService
	Stock    *StockService
	Sales    *SalesService
	Purchase *PurchaseService
	Report   *ReportService
}

func NewServices(repos *repository.Repositories, opts Options) *Services {
	if opts.Cache == nil {
		opts.Cache = noopCache{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Hub == nil {
		opts.Hub = events.NewHub(opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.ExpiringHorizonDays <= 0 {
		opts.ExpiringHorizonDays = 30
	}
	if opts.TopProducts <= 0 {
		opts.TopProducts = analytics.DefaultTopN
	}
	if opts.RecentMovements <= 0 {
		opts.RecentMovements = 5
	}

	n := &notifier{cache: opts.Cache, hub: opts.Hub, logger: opts.Logger}
	return &Services{
		Product:  NewProductService(repos, n, opts.Logger, opts.Now),
		Supplier: NewSupplierService(repos, n),
		Stock:    NewStockService(repos, n, opts.Logger, opts.Now),
		Sales:    NewSalesService(repos, n, opts.Logger, opts.Now),
		Purchase: NewPurchaseService(repos, n, opts.Logger, opts.Now),
		Report:   NewReportService(repos, opts),
	}
}

// notifier 数据变更后清理报表缓存并推送事件
type notifier struct {
	cache  ReportCache
	hub    *events.Hub
	logger *zap.Logger
}

func (n *notifier) changed(ctx context.Context) {
	if err := n.cache.Invalidate(ctx); err != nil {
		n.logger.Warn("invalidate report cache", zap.Error(err))
	}
}

func (n *notifier) publish(eventType string, payload interface{}) {
	n.hub.Publish(eventType, payload)
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, validationErrorf("invalid date %q", s)
	}
	return t, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// today returns the calendar date of now in UTC.
func today(now time.Time) time.Time {
	return analytics.StartOfDay(now.UTC())
}

func wrapNotFound(what string, id uint, err error) error {
	return fmt.Errorf("%s %d: %w", what, id, err)
}

// movementTx records a movement inside an open unit of work. When apply is set
// the product's stock is moved as well; OUT never takes stock below zero.
func movementTx(ctx context.Context, tx *repository.Repositories, m *entity.StockMovement, apply bool) (*entity.Product, error) {
	product, err := tx.Product.Get(ctx, m.ProductID)
	if err != nil {
		return nil, wrapNotFound("product", m.ProductID, err)
	}
	if apply {
		product.ApplyMovement(m.Type, m.Quantity)
		if err := tx.Product.Update(ctx, product); err != nil {
			return nil, fmt.Errorf("update stock: %w", err)
		}
	}
	if err := tx.Movement.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create movement: %w", err)
	}
	return product, nil
}

// announce publishes movement events, plus a stock alert for every product an
// outbound movement left at or below its reorder level.
func (n *notifier) announce(applied []appliedMovement) {
	for _, a := range applied {
		m, p := a.movement, a.product
		n.publish(events.TypeStockMovement, events.StockMovementPayload{
			MovementID:   m.ID,
			ProductID:    m.ProductID,
			Type:         m.Type,
			Quantity:     m.Quantity,
			Reason:       m.Reason,
			ReferenceID:  m.ReferenceID,
			CurrentStock: p.CurrentStock,
			Timestamp:    m.Timestamp,
		})
		if m.Type != entity.MovementTypeOut {
			continue
		}
		if status := analytics.ClassifyStock(p); status != analytics.StockNormal {
			n.publish(events.TypeStockAlert, events.StockAlertPayload{
				ProductID:    p.ID,
				SKU:          p.SKU,
				Name:         p.Name,
				Status:       string(status),
				CurrentStock: p.CurrentStock,
				ReorderLevel: p.ReorderLevel,
			})
		}
	}
}
