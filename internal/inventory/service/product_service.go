package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService 产品服务
type ProductService struct {
	repos  *repository.Repositories
	notify *notifier
	logger *zap.Logger
	now    func() time.Time
}

func NewProductService(repos *repository.Repositories, n *notifier, logger *zap.Logger, now func() time.Time) *ProductService {
	return &ProductService{repos: repos, notify: n, logger: logger, now: now}
}

// CreateProductRequest 创建产品请求
type CreateProductRequest struct {
	SKU            string          `json:"sku" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	Category       string          `json:"category"`
	CurrentStock   int             `json:"current_stock"`
	ReorderLevel   int             `json:"reorder_level"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	SupplierID     *uint           `json:"supplier_id"`
	ExpirationDate *string         `json:"expiration_date"`
	Barcode        string          `json:"barcode"`
}

// UpdateProductRequest 更新产品请求，只修改非空字段。SupplierID 为 0 时解除供应商，
// ExpirationDate 为空字符串时清除有效期。
type UpdateProductRequest struct {
	SKU            *string          `json:"sku"`
	Name           *string          `json:"name"`
	Category       *string          `json:"category"`
	CurrentStock   *int             `json:"current_stock"`
	ReorderLevel   *int             `json:"reorder_level"`
	UnitCost       *decimal.Decimal `json:"unit_cost"`
	SellingPrice   *decimal.Decimal `json:"selling_price"`
	SupplierID     *uint            `json:"supplier_id"`
	ExpirationDate *string          `json:"expiration_date"`
	Barcode        *string          `json:"barcode"`
}

// ProductView 产品及其库存状态
type ProductView struct {
	entity.Product
	StockStatus  analytics.StockStatus `json:"stock_status"`
	SupplierName string                `json:"supplier_name,omitempty"`
}

func productViews(products []entity.Product, suppliers []entity.Supplier) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		v := ProductView{Product: p, StockStatus: analytics.ClassifyStock(p)}
		if p.SupplierID != nil {
			v.SupplierName = analytics.SupplierName(suppliers, *p.SupplierID)
		}
		out = append(out, v)
	}
	return out
}

func (s *ProductService) List(ctx context.Context, filter analytics.ProductFilter) ([]ProductView, error) {
	products, err := s.repos.Product.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	suppliers, err := s.repos.Supplier.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return productViews(analytics.FilterProducts(products, filter), suppliers), nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*ProductView, error) {
	p, err := s.repos.Product.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("product", id, err)
	}
	suppliers, err := s.repos.Supplier.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	v := productViews([]entity.Product{*p}, suppliers)[0]
	return &v, nil
}

// LowStock returns products at or below their reorder level, out of stock included.
func (s *ProductService) LowStock(ctx context.Context) ([]ProductView, error) {
	products, err := s.repos.Product.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return productViews(analytics.LowStock(products), nil), nil
}

// Categories 去重排序后的分类
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.repos.Product.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	categories := analytics.Categories(products)
	sort.Strings(categories)
	return categories, nil
}

func validateProduct(p *entity.Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return validationErrorf("sku is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return validationErrorf("name is required")
	}
	if p.CurrentStock < 0 {
		return validationErrorf("current_stock must not be negative")
	}
	if p.ReorderLevel < 0 {
		return validationErrorf("reorder_level must not be negative")
	}
	if p.UnitCost.IsNegative() {
		return validationErrorf("unit_cost must not be negative")
	}
	if p.SellingPrice.IsNegative() {
		return validationErrorf("selling_price must not be negative")
	}
	return nil
}

// checkReferences verifies the SKU is unused by another product and that the
// supplier exists.
func checkReferences(ctx context.Context, repos *repository.Repositories, p *entity.Product) error {
	products, err := repos.Product.List(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	for _, other := range products {
		if other.ID != p.ID && strings.EqualFold(other.SKU, p.SKU) {
			return fmt.Errorf("%w: sku %q already exists", ErrConflict, p.SKU)
		}
	}
	if p.SupplierID != nil {
		if _, err := repos.Supplier.Get(ctx, *p.SupplierID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return validationErrorf("supplier %d does not exist", *p.SupplierID)
			}
			return fmt.Errorf("find supplier: %w", err)
		}
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*ProductView, error) {
	expiration, err := parseOptionalDate(req.ExpirationDate)
	if err != nil {
		return nil, err
	}
	p := &entity.Product{
		SKU:            strings.TrimSpace(req.SKU),
		Name:           strings.TrimSpace(req.Name),
		Category:       strings.TrimSpace(req.Category),
		CurrentStock:   req.CurrentStock,
		ReorderLevel:   req.ReorderLevel,
		UnitCost:       req.UnitCost,
		SellingPrice:   req.SellingPrice,
		SupplierID:     req.SupplierID,
		ExpirationDate: expiration,
		Barcode:        req.Barcode,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		if err := checkReferences(ctx, tx, p); err != nil {
			return err
		}
		return tx.Product.Create(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.notify.changed(ctx)
	return &ProductView{Product: *p, StockStatus: analytics.ClassifyStock(*p)}, nil
}

// Update merges the non-nil fields of req. A change of current stock is logged
// as a Stock Adjustment movement for the difference.
func (s *ProductService) Update(ctx context.Context, id uint, userID string, req *UpdateProductRequest) (*ProductView, error) {
	var (
		updated    *entity.Product
		adjustment *entity.StockMovement
	)
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		p, err := tx.Product.Get(ctx, id)
		if err != nil {
			return wrapNotFound("product", id, err)
		}
		before := p.CurrentStock
		if err := mergeProduct(p, req); err != nil {
			return err
		}
		if err := validateProduct(p); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, p); err != nil {
			return err
		}
		if err := tx.Product.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		if delta := p.CurrentStock - before; delta != 0 {
			now := s.now()
			adjustment = &entity.StockMovement{
				ProductID:   p.ID,
				Type:        entity.MovementTypeIn,
				Quantity:    delta,
				Reason:      entity.ReasonStockAdjustment,
				ReferenceID: fmt.Sprintf("ADJ-%d", now.UnixMilli()),
				UserID:      userID,
				Timestamp:   now,
			}
			if delta < 0 {
				adjustment.Type = entity.MovementTypeOut
				adjustment.Quantity = -delta
			}
			if _, err := movementTx(ctx, tx, adjustment, false); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify.changed(ctx)
	if adjustment != nil {
		s.logger.Info("stock adjusted",
			zap.Uint("product_id", updated.ID),
			zap.String("type", adjustment.Type),
			zap.Int("quantity", adjustment.Quantity))
		s.notify.announce([]appliedMovement{{movement: *adjustment, product: *updated}})
	}
	return &ProductView{Product: *updated, StockStatus: analytics.ClassifyStock(*updated)}, nil
}

func mergeProduct(p *entity.Product, req *UpdateProductRequest) error {
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.CurrentStock != nil {
		p.CurrentStock = *req.CurrentStock
	}
	if req.ReorderLevel != nil {
		p.ReorderLevel = *req.ReorderLevel
	}
	if req.UnitCost != nil {
		p.UnitCost = *req.UnitCost
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.SupplierID != nil {
		if *req.SupplierID == 0 {
			p.SupplierID = nil
		} else {
			id := *req.SupplierID
			p.SupplierID = &id
		}
	}
	if req.ExpirationDate != nil {
		exp, err := parseOptionalDate(req.ExpirationDate)
		if err != nil {
			return err
		}
		p.ExpirationDate = exp
	}
	if req.Barcode != nil {
		p.Barcode = *req.Barcode
	}
	return nil
}

// Delete removes the product only; its movements and order lines stay.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.repos.Product.Delete(ctx, id); err != nil {
		return wrapNotFound("product", id, err)
	}
	s.notify.changed(ctx)
	return nil
}
