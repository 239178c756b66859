package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/alerts"
	"posrail/internal/domain/stock"
	"posrail/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock movement and alert endpoints.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
	alerts  *alerts.Engine
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service, alertEngine *alerts.Engine) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service, alerts: alertEngine}
}

// Move applies a manual stock movement. Admin only.
// POST /api/v1/stock/movements
func (h *StockHandler) Move(c *gin.Context) {
	var req dto.MoveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}
	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id"))
		return
	}

	result, err := h.service.MoveStock(c.Request.Context(), stock.MoveInput{
		ProductID: productID,
		QtyChange: types.BaseQty(req.QtyChangeBaseUnit),
		Type:      types.MovementType(req.Type),
		Reason:    req.Reason,
		UserID:    userID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Movements returns ledger history.
// GET /api/v1/stock/movements
func (h *StockHandler) Movements(c *gin.Context) {
	var query dto.MovementListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := stock.MovementFilter{
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.ProductID != "" {
		productID, err := id.Parse(query.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id"))
			return
		}
		filter.ProductID = &productID
	}
	if query.Type != "" {
		t := types.MovementType(query.Type)
		filter.Type = &t
	}
	if query.SaleID != "" {
		saleID, err := id.Parse(query.SaleID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid sale id"))
			return
		}
		filter.RelatedSaleID = &saleID
	}
	if query.FromDate != "" {
		from, _ := time.Parse("2006-01-02", query.FromDate)
		filter.FromDate = &from
	}
	if query.ToDate != "" {
		to, _ := time.Parse("2006-01-02", query.ToDate)
		to = to.Add(24 * time.Hour)
		filter.ToDate = &to
	}

	movements, err := h.service.Movements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movements)
}

// Reconcile compares the ledger against a product's current stock.
// GET /api/v1/stock/reconcile/:id
func (h *StockHandler) Reconcile(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	rec, err := h.service.Reconcile(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Alerts returns products matching the low-stock rule.
// GET /api/v1/stock/alerts
func (h *StockHandler) Alerts(c *gin.Context) {
	var query dto.AlertsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	items, err := h.alerts.LowStock(c.Request.Context(), query.Rule)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}
