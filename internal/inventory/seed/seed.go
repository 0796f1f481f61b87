// Package seed loads the demo data set used by the memory backend and the
// `seed` command.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Result counts what a seed run created.
type Result struct {
	Skipped        bool `json:"skipped"`
	Suppliers      int  `json:"suppliers"`
	Products       int  `json:"products"`
	Movements      int  `json:"movements"`
	SalesOrders    int  `json:"sales_orders"`
	PurchaseOrders int  `json:"purchase_orders"`
}

type supplierSeed struct {
	Name, Contact, Email, Phone, Address, Terms string
}

type productSeed struct {
	SKU, Name, Category string
	Stock, Reorder      int
	Cost, Price         string
	Supplier            int // index into suppliers, -1 for none
	ExpiresInDays       *int
	Barcode             string
}

type movementSeed struct {
	Product  int
	Type     string
	Quantity int
	Reason   string
	Ref      string
	DaysAgo  int
}

type lineSeed struct {
	Product, Quantity int
}

type salesSeed struct {
	Customer string
	Status   string
	DaysAgo  int
	Lines    []lineSeed
}

type purchaseSeed struct {
	Supplier int
	Status   string
	DaysAgo  int
	Lines    []lineSeed
}

func days(n int) *int { return &n }

var suppliers = []supplierSeed{
	{"Northwind Components", "Alice Chen", "alice@northwind.example", "+1 555 0100", "12 Harbor Rd, Seattle", entity.PaymentTermsNet30},
	{"Bluegrass Foods", "Ben Ortiz", "orders@bluegrass.example", "+1 555 0101", "88 Mill St, Louisville", entity.PaymentTermsNet15},
	{"Apex Office Supply", "Carla Diaz", "carla@apex.example", "+1 555 0102", "3 Commerce Way, Denver", entity.PaymentTerms2_10Net30},
	{"Summit Electronics", "Dev Patel", "dev@summit.example", "+1 555 0103", "240 Tech Park, Austin", entity.PaymentTermsNet45},
}

var products = []productSeed{
	{"ELEC-001", "Wireless Mouse", "Electronics", 45, 10, "8.50", "24.99", 3, nil, "0012345678905"},
	{"ELEC-002", "USB-C Hub", "Electronics", 6, 8, "15.00", "39.99", 3, nil, "0012345678912"},
	{"ELEC-003", "Mechanical Keyboard", "Electronics", 0, 5, "42.00", "89.00", 0, nil, "0012345678929"},
	{"FOOD-001", "Organic Coffee Beans 1kg", "Food & Beverage", 30, 12, "11.20", "22.50", 1, days(20), "0098765432101"},
	{"FOOD-002", "Green Tea 100 bags", "Food & Beverage", 18, 10, "4.10", "9.75", 1, days(-3), "0098765432118"},
	{"FOOD-003", "Almond Granola", "Food & Beverage", 9, 10, "3.60", "7.99", 1, days(90), "0098765432125"},
	{"OFF-001", "A4 Copy Paper (500)", "Office Supplies", 120, 40, "3.25", "6.49", 2, nil, ""},
	{"OFF-002", "Gel Pen Pack", "Office Supplies", 64, 25, "2.10", "5.25", 2, nil, ""},
	{"OFF-003", "Desk Organizer", "Office Supplies", 14, 6, "6.80", "16.00", -1, nil, ""},
}

var movements = []movementSeed{
	{0, entity.MovementTypeIn, 50, entity.ReasonPurchaseOrder, "", 70},
	{6, entity.MovementTypeIn, 150, entity.ReasonPurchaseOrder, "", 65},
	{3, entity.MovementTypeIn, 40, entity.ReasonPurchaseOrder, "", 50},
	{6, entity.MovementTypeOut, 30, entity.ReasonSalesOrder, "", 44},
	{2, entity.MovementTypeOut, 5, entity.ReasonDamageAdjustment, "DMG-0007", 31},
	{4, entity.MovementTypeOut, 4, entity.ReasonExpiryAdjustment, "EXP-0003", 20},
	{7, entity.MovementTypeIn, 12, entity.ReasonReturn, "RMA-1042", 12},
	{8, entity.MovementTypeOut, 3, entity.ReasonTransfer, "TRF-0021", 6},
	{1, entity.MovementTypeOut, 2, entity.ReasonStockCountAdjustment, "CNT-2024-02", 2},
}

var salesOrders = []salesSeed{
	{"Greenfield Cafe", entity.SOStatusFulfilled, 58, []lineSeed{{3, 6}, {4, 4}}},
	{"Metro Law LLP", entity.SOStatusFulfilled, 40, []lineSeed{{6, 20}, {7, 10}}},
	{"Jordan Blake", entity.SOStatusFulfilled, 25, []lineSeed{{0, 3}, {1, 1}}},
	{"Riverside School", entity.SOStatusShipped, 9, []lineSeed{{6, 15}, {7, 12}, {8, 2}}},
	{"Priya Nair", entity.SOStatusProcessing, 4, []lineSeed{{0, 1}, {5, 2}}},
	{"Corner Bakery", entity.SOStatusPending, 1, []lineSeed{{3, 5}}},
}

var purchaseOrders = []purchaseSeed{
	{3, entity.POStatusReceived, 72, []lineSeed{{0, 50}, {1, 10}}},
	{2, entity.POStatusOrdered, 5, []lineSeed{{6, 100}, {7, 50}}},
	{1, entity.POStatusCancelled, 15, []lineSeed{{5, 30}}},
}

// Load inserts the demo data set. It does nothing when products already exist.
// Movements and orders are back-dated relative to now so the default report
// window has data in it.
func Load(ctx context.Context, repos *repository.Repositories, now time.Time, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	existing, err := repos.Product.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing products: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("seed skipped, products already present", zap.Int("products", len(existing)))
		return &Result{Skipped: true}, nil
	}

	res := &Result{}
	err = repos.WithinTx(ctx, func(tx *repository.Repositories) error {
		supplierIDs := make([]uint, 0, len(suppliers))
		for _, s := range suppliers {
			sup := &entity.Supplier{
				Name:          s.Name,
				ContactPerson: s.Contact,
				Email:         s.Email,
				Phone:         s.Phone,
				Address:       s.Address,
				PaymentTerms:  s.Terms,
			}
			if err := tx.Supplier.Create(ctx, sup); err != nil {
				return fmt.Errorf("create supplier %s: %w", s.Name, err)
			}
			supplierIDs = append(supplierIDs, sup.ID)
			res.Suppliers++
		}

		catalog := make([]entity.Product, 0, len(products))
		for _, p := range products {
			prod := entity.Product{
				SKU:          p.SKU,
				Name:         p.Name,
				Category:     p.Category,
				CurrentStock: p.Stock,
				ReorderLevel: p.Reorder,
				UnitCost:     decimal.RequireFromString(p.Cost),
				SellingPrice: decimal.RequireFromString(p.Price),
				Barcode:      p.Barcode,
			}
			if p.Supplier >= 0 {
				id := supplierIDs[p.Supplier]
				prod.SupplierID = &id
			}
			if p.ExpiresInDays != nil {
				exp := analytics.StartOfDay(now).AddDate(0, 0, *p.ExpiresInDays)
				prod.ExpirationDate = &exp
			}
			if err := tx.Product.Create(ctx, &prod); err != nil {
				return fmt.Errorf("create product %s: %w", p.SKU, err)
			}
			catalog = append(catalog, prod)
			res.Products++
		}

		for _, m := range movements {
			mv := &entity.StockMovement{
				ProductID:   catalog[m.Product].ID,
				Type:        m.Type,
				Quantity:    m.Quantity,
				Reason:      m.Reason,
				ReferenceID: m.Ref,
				UserID:      "system",
				Timestamp:   now.AddDate(0, 0, -m.DaysAgo),
			}
			if err := tx.Movement.Create(ctx, mv); err != nil {
				return fmt.Errorf("create movement: %w", err)
			}
			res.Movements++
		}

		for _, so := range salesOrders {
			n, err := seedSalesOrder(ctx, tx, so, catalog, now)
			if err != nil {
				return err
			}
			res.SalesOrders++
			res.Movements += n
		}

		for _, po := range purchaseOrders {
			if err := seedPurchaseOrder(ctx, tx, po, supplierIDs, catalog, now); err != nil {
				return err
			}
			res.PurchaseOrders++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("demo data loaded",
		zap.Int("suppliers", res.Suppliers),
		zap.Int("products", res.Products),
		zap.Int("movements", res.Movements),
		zap.Int("sales_orders", res.SalesOrders),
		zap.Int("purchase_orders", res.PurchaseOrders))
	return res, nil
}

// seedSalesOrder writes one historical order. Fulfilled orders get their OUT
// movements logged without touching the seeded stock levels.
func seedSalesOrder(ctx context.Context, tx *repository.Repositories, so salesSeed, catalog []entity.Product, now time.Time) (int, error) {
	orderDate := now.AddDate(0, 0, -so.DaysAgo)
	seq, err := tx.Numbers.Next(ctx, service.SalesOrderPrefix, orderDate.Year())
	if err != nil {
		return 0, fmt.Errorf("allocate sales order number: %w", err)
	}
	order := &entity.SalesOrder{
		OrderNumber:  repository.FormatNumber(service.SalesOrderPrefix, orderDate.Year(), seq),
		CustomerName: so.Customer,
		Status:       so.Status,
		OrderDate:    orderDate,
		TotalAmount:  decimal.Zero,
	}
	for _, l := range so.Lines {
		item := entity.SalesOrderItem{
			ProductID: catalog[l.Product].ID,
			Quantity:  l.Quantity,
			UnitPrice: catalog[l.Product].SellingPrice,
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}

	logged := 0
	if so.Status == entity.SOStatusFulfilled {
		fulfilled := orderDate.AddDate(0, 0, 2)
		order.FulfillmentDate = &fulfilled
		for _, item := range order.Items {
			mv := &entity.StockMovement{
				ProductID:   item.ProductID,
				Type:        entity.MovementTypeOut,
				Quantity:    item.Quantity,
				Reason:      entity.ReasonSalesOrder,
				ReferenceID: order.OrderNumber,
				UserID:      "system",
				Timestamp:   fulfilled,
			}
			if err := tx.Movement.Create(ctx, mv); err != nil {
				return 0, fmt.Errorf("create movement for %s: %w", order.OrderNumber, err)
			}
			logged++
		}
	}
	if err := tx.Sales.Create(ctx, order); err != nil {
		return 0, fmt.Errorf("create sales order %s: %w", order.OrderNumber, err)
	}
	return logged, nil
}

func seedPurchaseOrder(ctx context.Context, tx *repository.Repositories, po purchaseSeed, supplierIDs []uint, catalog []entity.Product, now time.Time) error {
	orderDate := now.AddDate(0, 0, -po.DaysAgo)
	seq, err := tx.Numbers.Next(ctx, service.PurchaseOrderPrefix, orderDate.Year())
	if err != nil {
		return fmt.Errorf("allocate purchase order number: %w", err)
	}
	expected := analytics.StartOfDay(orderDate).AddDate(0, 0, 14)
	order := &entity.PurchaseOrder{
		PONumber:         repository.FormatNumber(service.PurchaseOrderPrefix, orderDate.Year(), seq),
		SupplierID:       supplierIDs[po.Supplier],
		Status:           po.Status,
		OrderDate:        orderDate,
		ExpectedDelivery: &expected,
		TotalAmount:      decimal.Zero,
	}
	if po.Status == entity.POStatusReceived {
		received := orderDate.AddDate(0, 0, 10)
		order.ReceivedDate = &received
	}
	for _, l := range po.Lines {
		item := entity.PurchaseOrderItem{
			ProductID: catalog[l.Product].ID,
			Quantity:  l.Quantity,
			UnitPrice: catalog[l.Product].UnitCost,
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}
	if err := tx.Purchase.Create(ctx, order); err != nil {
		return fmt.Errorf("create purchase order %s: %w", order.PONumber, err)
	}
	return nil
}
