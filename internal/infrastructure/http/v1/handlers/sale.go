package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/pos"
	"posrail/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles checkout and sale history endpoints.
type SaleHandler struct {
	*BaseHandler
	coordinator *pos.Coordinator
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, coordinator *pos.Coordinator) *SaleHandler {
	return &SaleHandler{BaseHandler: base, coordinator: coordinator}
}

// Checkout executes a sale.
// POST /api/v1/sales
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cashierID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	input := pos.CheckoutInput{
		Payment:   pos.PaymentMethod(req.PaymentMethod),
		CashierID: cashierID,
	}
	for _, l := range req.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").
				WithDetail("value", l.ProductID))
			return
		}
		input.Lines = append(input.Lines, pos.CheckoutLine{
			ProductID:   productID,
			SaleMode:    types.SaleMode(l.SaleMode),
			QtyBaseUnit: types.BaseQty(l.QtyBaseUnit),
		})
	}
	if req.AmountGiven != nil {
		amount, err := types.NewMoneyFromString(*req.AmountGiven)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid amount given").
				WithDetail("value", *req.AmountGiven))
			return
		}
		input.AmountGiven = &amount
	}

	sale, err := h.coordinator.ExecuteSale(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// Get retrieves a sale with its lines, reversed or not.
// GET /api/v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.coordinator.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}

// List returns sale history.
// GET /api/v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	var query dto.SaleListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := pos.SaleFilter{
		IncludeDeleted: query.IncludeDeleted,
		Limit:          query.Limit,
		Offset:         query.Offset,
	}
	if query.CashierID != "" {
		cashierID, err := id.Parse(query.CashierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid cashier id"))
			return
		}
		filter.CashierID = &cashierID
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

	sales, err := h.coordinator.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sales)
}

// Reverse soft-deletes a sale and restores the stock it consumed. Admin only.
// DELETE /api/v1/sales/:id
func (h *SaleHandler) Reverse(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	sale, err := h.coordinator.ReverseSale(c.Request.Context(), saleID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, sale)
}
