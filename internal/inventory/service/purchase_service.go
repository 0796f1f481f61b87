package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseService 采购订单服务
type PurchaseService struct {
	repos  *repository.Repositories
	notify *notifier
	logger *zap.Logger
	now    func() time.Time
}

func NewPurchaseService(repos *repository.Repositories, n *notifier, logger *zap.Logger, now func() time.Time) *PurchaseService {
	return &PurchaseService{repos: repos, notify: n, logger: logger, now: now}
}

type CreatePurchaseOrderRequest struct {
	SupplierID       uint               `json:"supplier_id" binding:"required"`
	Items            []OrderItemRequest `json:"items" binding:"required"`
	ExpectedDelivery *string            `json:"expected_delivery"`
}

// PurchaseOrderView 采购订单及供应商名称
type PurchaseOrderView struct {
	entity.PurchaseOrder
	SupplierName string `json:"supplier_name"`
}

// PurchaseFilter 采购订单筛选条件
type PurchaseFilter struct {
	Status     string
	SupplierID *uint
}

func (s *PurchaseService) List(ctx context.Context, filter PurchaseFilter) ([]PurchaseOrderView, error) {
	orders, err := s.repos.Purchase.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	suppliers, err := s.repos.Supplier.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	out := make([]PurchaseOrderView, 0, len(orders))
	for _, o := range orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.SupplierID != nil && o.SupplierID != *filter.SupplierID {
			continue
		}
		out = append(out, PurchaseOrderView{PurchaseOrder: o, SupplierName: analytics.SupplierName(suppliers, o.SupplierID)})
	}
	return out, nil
}

func (s *PurchaseService) Get(ctx context.Context, id uint) (*PurchaseOrderView, error) {
	o, err := s.repos.Purchase.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("purchase order", id, err)
	}
	return s.view(ctx, o)
}

func (s *PurchaseService) view(ctx context.Context, o *entity.PurchaseOrder) (*PurchaseOrderView, error) {
	name := analytics.UnknownSupplier
	sup, err := s.repos.Supplier.Get(ctx, o.SupplierID)
	switch {
	case err == nil:
		name = sup.Name
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find supplier: %w", err)
	}
	return &PurchaseOrderView{PurchaseOrder: *o, SupplierName: name}, nil
}

// Create 创建采购订单：供应商必须存在，行单价默认取产品成本价
func (s *PurchaseService) Create(ctx context.Context, req *CreatePurchaseOrderRequest) (*PurchaseOrderView, error) {
	expected, err := parseOptionalDate(req.ExpectedDelivery)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &entity.PurchaseOrder{
		SupplierID:       req.SupplierID,
		Status:           entity.POStatusOrdered,
		OrderDate:        today(now),
		ExpectedDelivery: expected,
	}
	err = s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Supplier.Get(ctx, req.SupplierID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return validationErrorf("supplier %d does not exist", req.SupplierID)
			}
			return fmt.Errorf("find supplier: %w", err)
		}
		lines, err := resolveLines(ctx, tx, req.Items, func(p *entity.Product) decimal.Decimal { return p.UnitCost })
		if err != nil {
			return err
		}
		for _, l := range lines {
			order.Items = append(order.Items, entity.PurchaseOrderItem{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: *l.UnitPrice,
			})
		}
		order.TotalAmount = analytics.PurchaseTotal(order.Items)

		seq, err := tx.Numbers.Next(ctx, PurchaseOrderPrefix, now.Year())
		if err != nil {
			return err
		}
		order.PONumber = repository.FormatNumber(PurchaseOrderPrefix, now.Year(), seq)
		return tx.Purchase.Create(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}

	s.logger.Info("purchase order created",
		zap.String("po_number", order.PONumber),
		zap.String("total", order.TotalAmount.String()))
	s.notify.changed(ctx)
	return s.view(ctx, order)
}

// Receive books an Ordered purchase order into stock: one IN movement per line
// referencing the PO number.
func (s *PurchaseService) Receive(ctx context.Context, id uint, userID string) (*PurchaseOrderView, error) {
	var (
		order   *entity.PurchaseOrder
		applied []appliedMovement
	)
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		order, err = tx.Purchase.Get(ctx, id)
		if err != nil {
			return wrapNotFound("purchase order", id, err)
		}
		if order.Status != entity.POStatusOrdered {
			return transitionErrorf(order.Status, entity.POStatusReceived)
		}

		now := s.now()
		for _, item := range order.Items {
			m := &entity.StockMovement{
				ProductID:   item.ProductID,
				Type:        entity.MovementTypeIn,
				Quantity:    item.Quantity,
				Reason:      entity.ReasonPurchaseOrder,
				ReferenceID: order.PONumber,
				UserID:      userID,
				Timestamp:   now,
			}
			product, err := movementTx(ctx, tx, m, true)
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("skip receipt of unknown product",
					zap.String("po_number", order.PONumber),
					zap.Uint("product_id", item.ProductID))
				continue
			}
			if err != nil {
				return err
			}
			applied = append(applied, appliedMovement{movement: *m, product: *product})
		}

		received := today(now)
		order.Status = entity.POStatusReceived
		order.ReceivedDate = &received
		return tx.Purchase.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order received", zap.String("po_number", order.PONumber))
	s.afterStatusChange(ctx, order)
	s.notify.announce(applied)
	return s.view(ctx, order)
}

// Cancel 取消采购订单，仅限 Ordered 状态
func (s *PurchaseService) Cancel(ctx context.Context, id uint) (*PurchaseOrderView, error) {
	order, err := s.repos.Purchase.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("purchase order", id, err)
	}
	if order.Status != entity.POStatusOrdered {
		return nil, transitionErrorf(order.Status, entity.POStatusCancelled)
	}
	order.Status = entity.POStatusCancelled
	if err := s.repos.Purchase.Update(ctx, order); err != nil {
		return nil, wrapNotFound("purchase order", id, err)
	}
	s.afterStatusChange(ctx, order)
	return s.view(ctx, order)
}

func (s *PurchaseService) afterStatusChange(ctx context.Context, order *entity.PurchaseOrder) {
	s.notify.changed(ctx)
	s.notify.publish(events.TypeOrderUpdate, events.OrderUpdatePayload{
		Kind: "purchase_order", ID: order.ID, Number: order.PONumber, Status: order.Status,
	})
}

func (s *PurchaseService) Delete(ctx context.Context, id uint) error {
	if err := s.repos.Purchase.Delete(ctx, id); err != nil {
		return wrapNotFound("purchase order", id, err)
	}
	s.notify.changed(ctx)
	return nil
}
