package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/export"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"go.uber.org/zap"
)

// ReportService 报表与看板服务
type ReportService struct {
	repos    *repository.Repositories
	cache    ReportCache
	archiver ReportArchiver
	logger   *zap.Logger
	now      func() time.Time

	currency        string
	horizonDays     int
	topProducts     int
	recentMovements int
}

func NewReportService(repos *repository.Repositories, opts Options) *ReportService {
	return &ReportService{
		repos:           repos,
		cache:           opts.Cache,
		archiver:        opts.Archiver,
		logger:          opts.Logger,
		now:             opts.Now,
		currency:        opts.Currency,
		horizonDays:     opts.ExpiringHorizonDays,
		topProducts:     opts.TopProducts,
		recentMovements: opts.RecentMovements,
	}
}

// Snapshot is a point-in-time copy of the five inventory collections.
type Snapshot struct {
	Products       []entity.Product
	Suppliers      []entity.Supplier
	Movements      []entity.StockMovement
	SalesOrders    []entity.SalesOrder
	PurchaseOrders []entity.PurchaseOrder
}

// Snapshot loads every collection before any aggregation runs.
func (s *ReportService) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Products, err = s.repos.Product.List(ctx); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if snap.Suppliers, err = s.repos.Supplier.List(ctx); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	if snap.Movements, err = s.repos.Movement.List(ctx); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	if snap.SalesOrders, err = s.repos.Sales.List(ctx); err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	if snap.PurchaseOrders, err = s.repos.Purchase.List(ctx); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return &snap, nil
}

// Dashboard 看板数据
type Dashboard struct {
	Stock              analytics.StockHealth `json:"stock"`
	Sales              analytics.SalesStats  `json:"sales"`
	LowStock           []entity.Product      `json:"low_stock"`
	ExpiringSoon       []entity.Product      `json:"expiring_soon"`
	Expired            []entity.Product      `json:"expired"`
	RecentMovements    []MovementView        `json:"recent_movements"`
	SupplierCount      int                   `json:"supplier_count"`
	OpenPurchaseOrders int                   `json:"open_purchase_orders"`
	HorizonDays        int                   `json:"horizon_days"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// Dashboard summarises current stock and all-time sales. horizonDays <= 0
// uses the configured expiry horizon.
func (s *ReportService) Dashboard(ctx context.Context, horizonDays int) (*Dashboard, error) {
	if horizonDays <= 0 {
		horizonDays = s.horizonDays
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()

	d := &Dashboard{
		Stock:         analytics.StockHealthSummary(snap.Products),
		Sales:         analytics.SalesPerformance(snap.SalesOrders, analytics.Window{}),
		LowStock:      analytics.LowStock(snap.Products),
		ExpiringSoon:  analytics.ExpiringSoon(snap.Products, horizonDays, now),
		Expired:       analytics.Expired(snap.Products, now),
		SupplierCount: len(snap.Suppliers),
		HorizonDays:   horizonDays,
		GeneratedAt:   now,
	}
	for _, m := range analytics.RecentMovements(snap.Movements, s.recentMovements) {
		name, sku := analytics.ProductName(snap.Products, m.ProductID)
		d.RecentMovements = append(d.RecentMovements, MovementView{StockMovement: m, ProductName: name, ProductSKU: sku})
	}
	if d.RecentMovements == nil {
		d.RecentMovements = []MovementView{}
	}
	for _, po := range snap.PurchaseOrders {
		if po.Status == entity.POStatusOrdered {
			d.OpenPurchaseOrders++
		}
	}
	return d, nil
}

// DefaultWindow is the span the reports page opens with: from the first day
// of the month two months back to the last day of the current month, in UTC.
func DefaultWindow(now time.Time) analytics.Window {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return analytics.NewDateWindow(first.AddDate(0, -2, 0), first.AddDate(0, 1, -1))
}

// Build computes the report for w from a snapshot without touching the cache.
func (s *ReportService) Build(snap *Snapshot, w analytics.Window, topN int) *export.Report {
	if topN <= 0 {
		topN = s.topProducts
	}
	orders := analytics.FilterSalesOrdersByWindow(snap.SalesOrders, w)
	return &export.Report{
		DateRange: export.DateRange{
			StartDate: w.Start.Format("2006-01-02"),
			EndDate:   w.End.Format("2006-01-02"),
		},
		InventoryStats:       analytics.StockHealthSummary(snap.Products),
		SalesStats:           analytics.SalesPerformance(snap.SalesOrders, w),
		TopProducts:          analytics.TopProductsByRevenue(orders, snap.Products, topN),
		MovementSeries:       analytics.DailyMovementSeries(snap.Movements, w),
		CategoryDistribution: analytics.CategoryDistribution(snap.Products),
		SupplierSpend:        analytics.SupplierSpendSummary(snap.PurchaseOrders, snap.Suppliers),
		Currency:             s.currency,
		GeneratedAt:          s.now(),
	}
}

// Report returns the report for w, served from the cache until the next
// inventory change.
func (s *ReportService) Report(ctx context.Context, w analytics.Window, topN int) (*export.Report, error) {
	if topN <= 0 {
		topN = s.topProducts
	}
	key := fmt.Sprintf("%s:%s:%d", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339), topN)

	version, err := s.cache.Version(ctx)
	cacheable := err == nil
	if err != nil {
		s.logger.Warn("read report cache version", zap.Error(err))
	} else {
		var cached export.Report
		hit, err := s.cache.Get(ctx, version, key, &cached)
		if err != nil {
			s.logger.Warn("read report cache", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	report := s.Build(snap, w, topN)
	if cacheable {
		if err := s.cache.Set(ctx, version, key, report); err != nil {
			s.logger.Warn("write report cache", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// ExportResult 导出结果，ObjectName 为归档路径（未配置归档时为空）
type ExportResult struct {
	export.File
	ObjectName string
}

// Export renders the report for w and archives a copy when an archiver is
// configured. Archive failures are logged and do not fail the export.
func (s *ReportService) Export(ctx context.Context, w analytics.Window, topN int, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" && !export.IsSupported(format) {
		return nil, validationErrorf("unsupported format %q", format)
	}
	report, err := s.Report(ctx, w, topN)
	if err != nil {
		return nil, err
	}
	file, err := export.Render(report, format)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{File: *file}
	if s.archiver != nil {
		objectName, err := s.archiver.Archive(ctx, file.Name, file.ContentType, file.Data)
		if err != nil {
			s.logger.Warn("archive report", zap.String("file", file.Name), zap.Error(err))
		} else {
			result.ObjectName = objectName
		}
	}
	return result, nil
}
