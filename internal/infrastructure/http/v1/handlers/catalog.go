package handlers

import (
	"github.com/gin-gonic/gin"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/catalog/category"
	"posrail/internal/domain/catalog/product"
	"posrail/internal/infrastructure/http/v1/dto"
)

// CategoryHandler handles category catalog endpoints.
type CategoryHandler struct {
	*BaseHandler
	service *category.Service
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	return &CategoryHandler{BaseHandler: base, service: service}
}

// Create creates a category.
// POST /api/v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat := category.New(req.Name)
	cat.Description = req.Description
	if err := h.service.Create(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cat.ID.String())
}

// Update updates a category.
// PUT /api/v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cat, err := h.service.GetByID(c.Request.Context(), categoryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	cat.Name = req.Name
	cat.Description = req.Description

	if err := h.service.Update(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, cat)
}

// List returns all categories.
// GET /api/v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Delete removes a category.
// DELETE /api/v1/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), categoryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

func parseMoney(h *BaseHandler, c *gin.Context, field, value string) (types.Money, bool) {
	if value == "" {
		return types.ZeroMoney(), true
	}
	m, err := types.NewMoneyFromString(value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").
			WithDetail("field", field).
			WithDetail("value", value))
		return types.ZeroMoney(), false
	}
	return m, true
}

func saleModes(raw []string) []types.SaleMode {
	modes := make([]types.SaleMode, 0, len(raw))
	for _, m := range raw {
		modes = append(modes, types.SaleMode(m))
	}
	return modes
}

// Create creates a product.
// POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	actorID, ok := h.GetUserID(c)
	if !ok {
		return
	}
	categoryID, err := id.Parse(req.CategoryID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id"))
		return
	}

	costPrice, ok := parseMoney(h.BaseHandler, c, "costPrice", req.CostPrice)
	if !ok {
		return
	}

	p := product.New(req.Name, categoryID, types.UnitKind(req.UnitKind), saleModes(req.SaleModes), costPrice)
	p.Barcode = req.Barcode
	p.StockBaseUnit = types.BaseQty(req.InitialStockBaseUnit)
	if req.MinAlertStock > 0 {
		p.MinAlertStock = types.BaseQty(req.MinAlertStock)
	}
	if req.CupWeightGrams > 0 {
		p.CupWeightGrams = types.BaseQty(req.CupWeightGrams)
	}
	if p.PricePerUnit, ok = parseMoney(h.BaseHandler, c, "pricePerUnit", req.PricePerUnit); !ok {
		return
	}
	if p.PricePerKg, ok = parseMoney(h.BaseHandler, c, "pricePerKg", req.PricePerKg); !ok {
		return
	}
	if p.PricePerCup, ok = parseMoney(h.BaseHandler, c, "pricePerCup", req.PricePerCup); !ok {
		return
	}
	p.RecalculateStockValue()

	if err := h.service.Create(c.Request.Context(), p, actorID); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p.ID.String())
}

// Update updates catalog fields of a product. Stock is not editable here.
// PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	categoryID, err := id.Parse(req.CategoryID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id"))
		return
	}

	p.Name = req.Name
	p.Barcode = req.Barcode
	p.CategoryID = categoryID
	p.SaleModes = saleModes(req.SaleModes)
	if req.MinAlertStock > 0 {
		p.MinAlertStock = types.BaseQty(req.MinAlertStock)
	}
	if req.CupWeightGrams > 0 {
		p.CupWeightGrams = types.BaseQty(req.CupWeightGrams)
	}
	if p.PricePerUnit, ok = parseMoney(h.BaseHandler, c, "pricePerUnit", req.PricePerUnit); !ok {
		return
	}
	if p.PricePerKg, ok = parseMoney(h.BaseHandler, c, "pricePerKg", req.PricePerKg); !ok {
		return
	}
	if p.PricePerCup, ok = parseMoney(h.BaseHandler, c, "pricePerCup", req.PricePerCup); !ok {
		return
	}
	if p.CostPrice, ok = parseMoney(h.BaseHandler, c, "costPrice", req.CostPrice); !ok {
		return
	}

	if err := h.service.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Get retrieves a product.
// GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// GetByBarcode retrieves a product by barcode (register scanner lookup).
// GET /api/v1/products/barcode/:barcode
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	p, err := h.service.GetByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List returns products matching the query.
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	var query dto.ProductListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := product.ListFilter{
		Search: query.Search,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.CategoryID != "" {
		categoryID, err := id.Parse(query.CategoryID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid category id"))
			return
		}
		filter.CategoryID = &categoryID
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Delete removes a product from the catalog.
// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
