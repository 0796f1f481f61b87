package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	SalesOrderPrefix    = "SO"
	PurchaseOrderPrefix = "PO"
)

// SalesService 销售订单服务
type SalesService struct {
	repos  *repository.Repositories
	notify *notifier
	logger *zap.Logger
	now    func() time.Time
}

func NewSalesService(repos *repository.Repositories, n *notifier, logger *zap.Logger, now func() time.Time) *SalesService {
	return &SalesService{repos: repos, notify: n, logger: logger, now: now}
}

// OrderItemRequest 订单行。UnitPrice 为空时取产品售价（采购单取成本价）
type OrderItemRequest struct {
	ProductID uint             `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CreateSalesOrderRequest struct {
	CustomerName string             `json:"customer_name" binding:"required"`
	Items        []OrderItemRequest `json:"items" binding:"required"`
}

type UpdateSalesOrderRequest struct {
	CustomerName *string `json:"customer_name"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *SalesService) List(ctx context.Context, filter analytics.OrderFilter) ([]entity.SalesOrder, error) {
	orders, err := s.repos.Sales.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	return analytics.FilterSalesOrders(orders, filter), nil
}

func (s *SalesService) Get(ctx context.Context, id uint) (*entity.SalesOrder, error) {
	order, err := s.repos.Sales.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("sales order", id, err)
	}
	return order, nil
}

// resolveLines checks every line against the product snapshot and fills in the
// default unit price.
func resolveLines(ctx context.Context, repos *repository.Repositories, items []OrderItemRequest, price func(*entity.Product) decimal.Decimal) ([]OrderItemRequest, error) {
	if len(items) == 0 {
		return nil, validationErrorf("at least one item is required")
	}
	lines := make([]OrderItemRequest, 0, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, validationErrorf("item %d: quantity must be positive", i+1)
		}
		p, err := repos.Product.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationErrorf("item %d: product %d does not exist", i+1, item.ProductID)
			}
			return nil, fmt.Errorf("find product: %w", err)
		}
		unitPrice := price(p)
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}
		if unitPrice.IsNegative() {
			return nil, validationErrorf("item %d: unit_price must not be negative", i+1)
		}
		lines = append(lines, OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: &unitPrice})
	}
	return lines, nil
}

// Create 创建销售订单：计算金额、分配单号、状态为 Pending
func (s *SalesService) Create(ctx context.Context, req *CreateSalesOrderRequest) (*entity.SalesOrder, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, validationErrorf("customer_name is required")
	}

	now := s.now()
	order := &entity.SalesOrder{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Status:       entity.SOStatusPending,
		OrderDate:    today(now),
	}
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		lines, err := resolveLines(ctx, tx, req.Items, func(p *entity.Product) decimal.Decimal { return p.SellingPrice })
		if err != nil {
			return err
		}
		for _, l := range lines {
			order.Items = append(order.Items, entity.SalesOrderItem{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: *l.UnitPrice,
			})
		}
		order.TotalAmount = analytics.OrderTotal(order.Items)

		seq, err := tx.Numbers.Next(ctx, SalesOrderPrefix, now.Year())
		if err != nil {
			return err
		}
		order.OrderNumber = repository.FormatNumber(SalesOrderPrefix, now.Year(), seq)
		return tx.Sales.Create(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("create sales order: %w", err)
	}

	s.logger.Info("sales order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()))
	s.notify.changed(ctx)
	return order, nil
}

func (s *SalesService) Update(ctx context.Context, id uint, req *UpdateSalesOrderRequest) (*entity.SalesOrder, error) {
	order, err := s.repos.Sales.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound("sales order", id, err)
	}
	if req.CustomerName != nil {
		name := strings.TrimSpace(*req.CustomerName)
		if name == "" {
			return nil, validationErrorf("customer_name is required")
		}
		order.CustomerName = name
	}
	if err := s.repos.Sales.Update(ctx, order); err != nil {
		return nil, wrapNotFound("sales order", id, err)
	}
	s.notify.changed(ctx)
	return order, nil
}

// UpdateStatus moves an order forward through its lifecycle. Repeating the
// current status is a no-op. Reaching Fulfilled stamps the fulfillment date and
// ships every line as an OUT movement referencing the order number.
func (s *SalesService) UpdateStatus(ctx context.Context, id uint, userID, status string) (*entity.SalesOrder, error) {
	target, ok := entity.SOStatusRank[status]
	if !ok {
		return nil, validationErrorf("unknown status %q", status)
	}

	var (
		order   *entity.SalesOrder
		applied []appliedMovement
		changed bool
	)
	err := s.repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		var err error
		order, err = tx.Sales.Get(ctx, id)
		if err != nil {
			return wrapNotFound("sales order", id, err)
		}
		current := entity.SOStatusRank[order.Status]
		if target == current {
			return nil
		}
		if target < current {
			return transitionErrorf(order.Status, status)
		}

		order.Status = status
		if status == entity.SOStatusFulfilled && order.FulfillmentDate == nil {
			now := s.now()
			fulfilled := today(now)
			order.FulfillmentDate = &fulfilled
			applied, err = s.ship(ctx, tx, order, userID, now)
			if err != nil {
				return err
			}
		}
		changed = true
		return tx.Sales.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return order, nil
	}

	s.logger.Info("sales order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status))
	s.notify.changed(ctx)
	s.notify.publish(events.TypeOrderUpdate, events.OrderUpdatePayload{
		Kind: "sales_order", ID: order.ID, Number: order.OrderNumber, Status: order.Status,
	})
	s.notify.announce(applied)
	return order, nil
}

// ship records one OUT movement per order line. Lines whose product has been
// deleted are skipped.
func (s *SalesService) ship(ctx context.Context, tx *repository.Repositories, order *entity.SalesOrder, userID string, now time.Time) ([]appliedMovement, error) {
	applied := make([]appliedMovement, 0, len(order.Items))
	for _, item := range order.Items {
		m := &entity.StockMovement{
			ProductID:   item.ProductID,
			Type:        entity.MovementTypeOut,
			Quantity:    item.Quantity,
			Reason:      entity.ReasonSalesOrder,
			ReferenceID: order.OrderNumber,
			UserID:      userID,
			Timestamp:   now,
		}
		product, err := movementTx(ctx, tx, m, true)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("skip shipment of unknown product",
				zap.String("order_number", order.OrderNumber),
				zap.Uint("product_id", item.ProductID))
			continue
		}
		if err != nil {
			return nil, err
		}
		applied = append(applied, appliedMovement{movement: *m, product: *product})
	}
	return applied, nil
}

func (s *SalesService) Delete(ctx context.Context, id uint) error {
	if err := s.repos.Sales.Delete(ctx, id); err != nil {
		return wrapNotFound("sales order", id, err)
	}
	s.notify.changed(ctx)
	return nil
}
