package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/domain/reports"
	"posrail/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles report endpoints. Admin only.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

func (h *ReportsHandler) parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	var query dto.ReportPeriodQuery
	if !h.BindQuery(c, &query) {
		return time.Time{}, time.Time{}, false
	}

	from, _ := time.Parse("2006-01-02", query.FromDate)
	to, _ := time.Parse("2006-01-02", query.ToDate)
	// Half-open period: the end date's full day is included.
	return from, to.Add(24 * time.Hour), true
}

// Financial returns revenue, cost of goods, expenses and profit for a period.
// GET /api/v1/reports/financial
func (h *ReportsHandler) Financial(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	report, err := h.service.GetFinancial(c.Request.Context(), reports.FinancialReportFilter{
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// ProductSales returns per-product sales figures for a period.
// GET /api/v1/reports/product-sales
func (h *ReportsHandler) ProductSales(c *gin.Context) {
	from, to, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	filter := reports.ProductSalesFilter{
		FromDate: from,
		ToDate:   to,
		Limit:    h.ParseIntQuery(c, "limit", 100),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}
	if raw := c.Query("categoryId"); raw != "" {
		categoryID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid category id"))
			return
		}
		filter.CategoryID = &categoryID
	}

	report, err := h.service.GetProductSales(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Capital returns the current capital snapshot.
// GET /api/v1/reports/capital
func (h *ReportsHandler) Capital(c *gin.Context) {
	report, err := h.service.GetCapital(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// DailySummary returns the condensed figures for one day (today by default).
// GET /api/v1/reports/daily
func (h *ReportsHandler) DailySummary(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid date").
				WithDetail("value", raw))
			return
		}
		day = parsed
	}

	summary, err := h.service.GetDailySummary(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}
