package handler

import (
	"github.com/bitfantasy/nimo-inventory/internal/inventory/analytics"
	"github.com/bitfantasy/nimo-inventory/internal/inventory/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler 产品处理器
type ProductHandler struct {
	svc   *service.ProductService
	stock *service.StockService
}

func NewProductHandler(svc *service.ProductService, stock *service.StockService) *ProductHandler {
	return &ProductHandler{svc: svc, stock: stock}
}

// List 产品列表
// GET /api/v1/inventory/products?search=&category=&stock_level=low|out|normal&supplier_id=
func (h *ProductHandler) List(c *gin.Context) {
	supplierID, ok := QueryUint(c, "supplier_id")
	if !ok {
		return
	}
	level := c.Query("stock_level")
	if level != "" && !analytics.IsValidStockStatus(level) {
		BadRequest(c, "invalid stock_level")
		return
	}

	items, err := h.svc.List(c.Request.Context(), analytics.ProductFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		StockLevel: analytics.StockStatus(level),
		SupplierID: supplierID,
	})
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Total: len(items)})
}

// Get 产品详情
// GET /api/v1/inventory/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	product, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, product)
}

// Create 创建产品
// POST /api/v1/inventory/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	product, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, product)
}

// Update 更新产品
// PUT /api/v1/inventory/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}
	product, err := h.svc.Update(c.Request.Context(), id, GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, product)
}

// Delete 删除产品
// DELETE /api/v1/inventory/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
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

// Categories GET /api/v1/inventory/products/categories
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, categories)
}

// LowStock GET /api/v1/inventory/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	items, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Total: len(items)})
}

// Movements 产品出入库历史
// GET /api/v1/inventory/products/:id/movements
func (h *ProductHandler) Movements(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}
	items, err := h.stock.ListByProduct(c.Request.Context(), id)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Total: len(items)})
}
