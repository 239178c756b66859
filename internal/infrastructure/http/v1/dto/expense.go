package dto

// CreateExpenseRequest records an expense.
type CreateExpenseRequest struct {
	Description string `json:"description" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Category    string `json:"category,omitempty"`
	SpentAt     string `json:"spentAt" binding:"omitempty,datetime=2006-01-02"`
}

// ExpenseListQuery filters expense listings.
type ExpenseListQuery struct {
	ListQuery
	Category string `form:"category"`
	FromDate string `form:"fromDate" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"toDate" binding:"omitempty,datetime=2006-01-02"`
}

// ReportPeriodQuery is the period selector shared by report endpoints.
type ReportPeriodQuery struct {
	FromDate string `form:"fromDate" binding:"required,datetime=2006-01-02"`
	ToDate   string `form:"toDate" binding:"required,datetime=2006-01-02"`
}
