package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"go.uber.org/zap"
)

// StockService 出入库服务
type StockService struct {
	repos  *repository.Repositories
	notify *notifier
	logger *zap.Logger
	now    func() time.Time
}

func NewStockService(repos *repository.Repositories, n *notifier, logger *zap.Logger, now func() time.Time) *StockService {
	return &StockService{repos: repos, notify: n, logger: logger, now: now}
}

// RecordMovementRequest 出入库请求
type RecordMovementRequest struct {
	ProductID   uint   `json:"product_id" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	ReferenceID string `json:"reference_id"`
}

// MovementView is a movement joined with its product for display.
type MovementView struct {
	entity.StockMovement
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
}

// appliedMovement pairs a committed movement with the product state after it.
type appliedMovement struct {
	movement entity.StockMovement
	product  entity.Product
}

func (s *StockService) views(movements []entity.StockMovement, products []entity.Product) []MovementView {
	out := make([]MovementView, 0, len(movements))
	for _, m := range movements {
		name, sku := analytics.ProductName(products, m.ProductID)
		out = append(out, MovementView{StockMovement: m, ProductName: name, ProductSKU: sku})
	}
	return out
}

// List 出入库流水，按时间倒序
func (s *StockService) List(ctx context.Context, filter analytics.MovementFilter) ([]MovementView, error) {
	movements, err := s.repos.Movement.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	products, err := s.repos.Product.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return s.views(analytics.FilterMovements(movements, products, filter), products), nil
}

func (s *StockService) Get(ctx context.Context, id uint) (*MovementView, error) {
	m, err := s.repos.Movement.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("movement", id, err)
	}
	products, err := s.repos.Product.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	v := s.views([]entity.StockMovement{*m}, products)[0]
	return &v, nil
}

// ListByProduct returns the movement history of one product. The product may
// already be deleted; its history is still returned.
func (s *StockService) ListByProduct(ctx context.Context, productID uint) ([]MovementView, error) {
	return s.List(ctx, analytics.MovementFilter{ProductID: &productID})
}

// Recent 最近的出入库记录
func (s *StockService) Recent(ctx context.Context, limit int) ([]MovementView, error) {
	movements, err := s.repos.Movement.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	products, err := s.repos.Product.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return s.views(analytics.RecentMovements(movements, limit), products), nil
}

func validateMovement(req *RecordMovementRequest) error {
	if req.ProductID == 0 {
		return validationErrorf("product_id is required")
	}
	if !entity.IsValidMovementType(req.Type) {
		return validationErrorf("type must be %s or %s", entity.MovementTypeIn, entity.MovementTypeOut)
	}
	if req.Quantity <= 0 {
		return validationErrorf("quantity must be positive")
	}
	if !entity.IsValidReason(req.Reason) {
		return validationErrorf("unknown reason %q", req.Reason)
	}
	return nil
}

// Record creates a movement and applies it to the product's stock in one unit
// of work.
func (s *StockService) Record(ctx context.Context, userID string, req *RecordMovementRequest) (*MovementView, error) {
	if err := validateMovement(req); err != nil {
		return nil, err
	}

	m := &entity.StockMovement{
		ProductID:   req.ProductID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		ReferenceID: req.ReferenceID,
		UserID:      userID,
		Timestamp:   s.now(),
	}
	var product *entity.Product
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		product, err = movementTx(ctx, tx, m, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock movement recorded",
		zap.Uint("movement_id", m.ID),
		zap.Uint("product_id", m.ProductID),
		zap.String("type", m.Type),
		zap.Int("quantity", m.Quantity),
		zap.Int("current_stock", product.CurrentStock))
	s.notify.changed(ctx)
	s.notify.announce([]appliedMovement{{movement: *m, product: *product}})

	return &MovementView{StockMovement: *m, ProductName: product.Name, ProductSKU: product.SKU}, nil
}

// Delete removes a log entry. Stock levels are not reverted.
func (s *StockService) Delete(ctx context.Context, id uint) error {
	if err := s.repos.Movement.Delete(ctx, id); err != nil {
		return wrapNotFound("movement", id, err)
	}
	s.notify.changed(ctx)
	return nil
}
