package handler

import (
	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// SupplierHandler 供应商处理器
type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// List 供应商列表
// GET /api/v1/inventory/suppliers?search=xxx
func (h *SupplierHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Total: len(items)})
}

// Get GET /api/v1/inventory/suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, supplier)
}

// Create POST /api/v1/inventory/suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	supplier, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, supplier)
}

// Update PUT /api/v1/inventory/suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	supplier, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, supplier)
}

// Delete DELETE /api/v1/inventory/suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
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

// PaymentTerms GET /api/v1/inventory/suppliers/payment-terms
func (h *SupplierHandler) PaymentTerms(c *gin.Context) {
	Success(c, entity.PaymentTermsList)
}
