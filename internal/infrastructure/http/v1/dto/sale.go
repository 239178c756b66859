package dto

// CheckoutLineRequest is one requested sale line.
type CheckoutLineRequest struct {
	ProductID   string `json:"productId" binding:"required,uuid"`
	SaleMode    string `json:"saleMode" binding:"required,salemode"`
	QtyBaseUnit int64  `json:"qtyBaseUnit" binding:"required,gt=0"`
}

// CheckoutRequest executes a sale.
type CheckoutRequest struct {
	Lines         []CheckoutLineRequest `json:"lines" binding:"required,min=1,dive"`
	PaymentMethod string                `json:"paymentMethod" binding:"required,oneof=cash card transfer"`

	// AmountGiven defaults to the computed total when omitted.
	AmountGiven *string `json:"amountGiven,omitempty"`
}

// SaleListQuery filters sale history.
type SaleListQuery struct {
	ListQuery
	CashierID      string `form:"cashierId" binding:"omitempty,uuid"`
	FromDate       string `form:"fromDate" binding:"omitempty,datetime=2006-01-02"`
	ToDate         string `form:"toDate" binding:"omitempty,datetime=2006-01-02"`
	IncludeDeleted bool   `form:"includeDeleted"`
}
