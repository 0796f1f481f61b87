package handler

import (
	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// StockHandler 出入库处理器
type StockHandler struct {
	svc *service.StockService
}

func NewStockHandler(svc *service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// List 出入库流水
// GET /api/v1/inventory/stock-movements?search=&type=IN|OUT&reason=&product_id=&start_date=&end_date=
func (h *StockHandler) List(c *gin.Context) {
	productID, ok := QueryUint(c, "product_id")
	if !ok {
		return
	}
	window, ok := QueryWindow(c)
	if !ok {
		return
	}
	movementType := c.Query("type")
	if movementType != "" && !entity.IsValidMovementType(movementType) {
		BadRequest(c, "invalid type")
		return
	}

	items, err := h.svc.List(c.Request.Context(), analytics.MovementFilter{
		Search:    c.Query("search"),
		Type:      movementType,
		Reason:    c.Query("reason"),
		ProductID: productID,
		Window:    window,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Total: len(items)})
}

// Get GET /api/v1/inventory/stock-movements/:id
func (h *StockHandler) Get(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	movement, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, movement)
}

// Create 登记出入库
// POST /api/v1/inventory/stock-movements
func (h *StockHandler) Create(c *gin.Context) {
	var req service.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	movement, err := h.svc.Record(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, movement)
}

// Delete 删除流水记录，不回滚库存
// DELETE /api/v1/inventory/stock-movements/:id
func (h *StockHandler) Delete(c *gin.Context) {
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

// Recent GET /api/v1/inventory/stock-movements/recent?limit=10
func (h *StockHandler) Recent(c *gin.Context) {
	limit, ok := QueryInt(c, "limit", 10)
	if !ok {
		return
	}
	items, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, items)
}

// Reasons GET /api/v1/inventory/stock-movements/reasons
func (h *StockHandler) Reasons(c *gin.Context) {
	Success(c, entity.MovementReasons)
}
