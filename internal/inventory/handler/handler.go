package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/events"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/repository"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// Handlers 库存处理器集合
type Handlers struct {
	Product  *ProductHandler
	Supplier *SupplierHandler
	Stock    *StockHandler
	Sales    *SalesHandler
	Purchase *PurchaseHandler
	Report   *ReportHandler
	Events   *EventsHandler
}

func NewHandlers(svc *service.Services, hub *events.Hub, now func() time.Time) *Handlers {
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		Product:  NewProductHandler(svc.Product, svc.Stock),
		Supplier: NewSupplierHandler(svc.Supplier),
		Stock:    NewStockHandler(svc.Stock),
		Sales:    NewSalesHandler(svc.Sales),
		Purchase: NewPurchaseHandler(svc.Purchase),
		Report:   NewReportHandler(svc.Report, now),
		Events:   NewEventsHandler(hub),
	}
}

// RegisterRoutes mounts the inventory API under rg.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	inv := rg.Group("/inventory")
	{
		products := inv.Group("/products")
		{
			products.GET("", h.Product.List)
			products.POST("", h.Product.Create)
			products.GET("/categories", h.Product.Categories)
			products.GET("/low-stock", h.Product.LowStock)
			products.GET("/:id", h.Product.Get)
			products.PUT("/:id", h.Product.Update)
			products.DELETE("/:id", h.Product.Delete)
			products.GET("/:id/movements", h.Product.Movements)
		}

		suppliers := inv.Group("/suppliers")
		{
			suppliers.GET("", h.Supplier.List)
			suppliers.POST("", h.Supplier.Create)
			suppliers.GET("/payment-terms", h.Supplier.PaymentTerms)
			suppliers.GET("/:id", h.Supplier.Get)
			suppliers.PUT("/:id", h.Supplier.Update)
			suppliers.DELETE("/:id", h.Supplier.Delete)
		}

		movements := inv.Group("/stock-movements")
		{
			movements.GET("", h.Stock.List)
			movements.POST("", h.Stock.Create)
			movements.GET("/recent", h.Stock.Recent)
			movements.GET("/reasons", h.Stock.Reasons)
			movements.GET("/:id", h.Stock.Get)
			movements.DELETE("/:id", h.Stock.Delete)
		}

		sales := inv.Group("/sales-orders")
		{
			sales.GET("", h.Sales.List)
			sales.POST("", h.Sales.Create)
			sales.GET("/:id", h.Sales.Get)
			sales.PUT("/:id", h.Sales.Update)
			sales.PUT("/:id/status", h.Sales.UpdateStatus)
			sales.DELETE("/:id", h.Sales.Delete)
		}

		purchases := inv.Group("/purchase-orders")
		{
			purchases.GET("", h.Purchase.List)
			purchases.POST("", h.Purchase.Create)
			purchases.GET("/:id", h.Purchase.Get)
			purchases.POST("/:id/receive", h.Purchase.Receive)
			purchases.POST("/:id/cancel", h.Purchase.Cancel)
			purchases.DELETE("/:id", h.Purchase.Delete)
		}

		inv.GET("/dashboard", h.Report.Dashboard)
		inv.GET("/reports", h.Report.Report)
		inv.GET("/reports/export", h.Report.Export)
		inv.GET("/events", h.Events.Stream)
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps a service error onto the response envelope.
func ServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		Error(c, 40901, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// ParamID reads a positive numeric path parameter, answering 400 otherwise.
func ParamID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// QueryUint reads an optional positive numeric query parameter.
func QueryUint(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		BadRequest(c, "invalid "+name)
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// QueryInt reads an optional integer query parameter with a default.
func QueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}
