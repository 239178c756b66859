package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"posrail/internal/core/apperror"
	"posrail/internal/core/types"
	"posrail/internal/domain/expense"
	"posrail/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler handles expense endpoints.
type ExpenseHandler struct {
	*BaseHandler
	service *expense.Service
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// Create records an expense. Admin only.
// POST /api/v1/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	userID, ok := h.GetUserID(c)
	if !ok {
		return
	}

	amount, err := types.NewMoneyFromString(req.Amount)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid amount").
			WithDetail("value", req.Amount))
		return
	}

	spentAt := time.Now().UTC()
	if req.SpentAt != "" {
		spentAt, _ = time.Parse("2006-01-02", req.SpentAt)
	}

	e := expense.New(req.Description, amount, req.Category, spentAt, userID)
	if err := h.service.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e.ID.String())
}

// List returns expenses matching the query. Admin only.
// GET /api/v1/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var query dto.ExpenseListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := expense.Filter{
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.Category != "" {
		filter.Category = &query.Category
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

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// Delete removes an expense. Admin only.
// DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	expenseID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), expenseID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
