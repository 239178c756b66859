package dto

// MoveStockRequest applies a manual stock movement.
type MoveStockRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Type      string `json:"type" binding:"required,movementtype"`

	// QtyChangeBaseUnit is positive for in/out; adjustments accept either sign.
	QtyChangeBaseUnit int64 `json:"qtyChangeBaseUnit" binding:"required"`

	Reason string `json:"reason" binding:"required"`
}

// MovementListQuery filters movement history.
type MovementListQuery struct {
	ListQuery
	ProductID string `form:"productId" binding:"omitempty,uuid"`
	Type      string `form:"type" binding:"omitempty,movementtype"`
	SaleID    string `form:"saleId" binding:"omitempty,uuid"`
	FromDate  string `form:"fromDate" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `form:"toDate" binding:"omitempty,datetime=2006-01-02"`
}

// AlertsQuery optionally overrides the low-stock rule expression.
type AlertsQuery struct {
	Rule string `form:"rule"`
}
