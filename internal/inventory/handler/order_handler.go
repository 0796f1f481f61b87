package handler

import (
	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// SalesHandler 销售订单处理器
type SalesHandler struct {
	svc *service.SalesService
}

func NewSalesHandler(svc *service.SalesService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// List 销售订单列表
// GET /api/v1/inventory/sales-orders?search=&status=&start_date=&end_date=
func (h *SalesHandler) List(c *gin.Context) {
	window, ok := QueryWindow(c)
	if !ok {
		return
	}
	items, err := h.svc.List(c.Request.Context(), analytics.OrderFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Window: window,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Total: len(items)})
}

// Get GET /api/v1/inventory/sales-orders/:id
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Create 创建销售订单
// POST /api/v1/inventory/sales-orders
func (h *SalesHandler) Create(c *gin.Context) {
	var req service.CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, order)
}

// Update PUT /api/v1/inventory/sales-orders/:id
func (h *SalesHandler) Update(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// UpdateStatus 推进订单状态，Fulfilled 时自动出库
// PUT /api/v1/inventory/sales-orders/:id/status
func (h *SalesHandler) UpdateStatus(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.UpdateStatus(c.Request.Context(), id, GetUserID(c), req.Status)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Delete DELETE /api/v1/inventory/sales-orders/:id
func (h *SalesHandler) Delete(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}

// PurchaseHandler 采购订单处理器
type PurchaseHandler struct {
	svc *service.PurchaseService
}

func NewPurchaseHandler(svc *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// List GET /api/v1/inventory/purchase-orders?status=&supplier_id=
func (h *PurchaseHandler) List(c *gin.Context) {
	supplierID, ok := QueryUint(c, "supplier_id")
	if !ok {
		return
	}
	items, err := h.svc.List(c.Request.Context(), service.PurchaseFilter{
		Status:     c.Query("status"),
		SupplierID: supplierID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Total: len(items)})
}

// Get GET /api/v1/inventory/purchase-orders/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Create POST /api/v1/inventory/purchase-orders
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, order)
}

// Receive 收货入库
// POST /api/v1/inventory/purchase-orders/:id/receive
func (h *PurchaseHandler) Receive(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Receive(c.Request.Context(), id, GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Cancel POST /api/v1/inventory/purchase-orders/:id/cancel
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, order)
}

// Delete DELETE /api/v1/inventory/purchase-orders/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}
