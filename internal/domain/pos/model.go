// Package pos implements the point-of-sale transaction coordinator:
// checkout and sale reversal as atomic multi-record operations.
package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"posrail/internal/core/apperror"
	"posrail/internal/core/entity"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether the payment method is known.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// SaleLine is one item on a sale: a product sold in a specific mode.
type SaleLine struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ProductName string         `db:"product_name" json:"productName"`
	SaleMode    types.SaleMode `db:"sale_mode" json:"saleMode"`

	// QtyBaseUnit is the quantity in the product's base unit
	// (pieces for discrete products, grams for weighed ones).
	QtyBaseUnit types.BaseQty `db:"qty_base_unit" json:"qtyBaseUnit"`

	UnitKind  types.UnitKind `db:"unit_kind" json:"unitKind"`
	LineTotal types.Money    `db:"line_total" json:"lineTotal"`
}

// Sale is a completed checkout. Reversal is a soft delete: the record stays,
// DeletedAt is set, and compensating movements restore stock.
type Sale struct {
	entity.Base

	Lines []SaleLine `db:"-" json:"lines"`

	Total       types.Money   `db:"total" json:"total"`
	AmountGiven types.Money   `db:"amount_given" json:"amountGiven"`
	Change      types.Money   `db:"change" json:"change"`
	Payment     PaymentMethod `db:"payment_method" json:"paymentMethod"`

	// CashierID is the user who rang up the sale.
	CashierID id.ID `db:"cashier_id" json:"cashierId"`

	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
	DeletedBy *id.ID     `db:"deleted_by" json:"deletedBy,omitempty"`
}

// IsDeleted reports whether the sale has been reversed.
func (s *Sale) IsDeleted() bool {
	return s.DeletedAt != nil
}

// MarkDeleted records the reversal. Returns the already-deleted error if the
// sale was previously reversed; a second reversal is never a silent no-op.
func (s *Sale) MarkDeleted(userID id.ID, at time.Time) error {
	if s.IsDeleted() {
		return apperror.NewSaleAlreadyDeleted(s.ID.String())
	}
	s.DeletedAt = &at
	s.DeletedBy = &userID
	s.Touch()
	return nil
}

// Validate checks structural consistency of a sale before it is committed.
func (s *Sale) Validate(ctx context.Context) error {
	if len(s.Lines) == 0 {
		return apperror.NewEmptyCart()
	}
	if !s.Payment.Valid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(s.Payment))
	}
	if s.Total.IsNegative() {
		return apperror.NewValidation("total cannot be negative").
			WithDetail("field", "total")
	}
	if id.IsNil(s.CashierID) {
		return apperror.NewValidation("cashier is required").
			WithDetail("field", "cashierId")
	}

	sum := decimal.Zero
	for i, l := range s.Lines {
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation("line product is required").
				WithDetail("line", i)
		}
		if !l.SaleMode.Valid() {
			return apperror.NewValidation("invalid sale mode").
				WithDetail("line", i).
				WithDetail("value", string(l.SaleMode))
		}
		if l.QtyBaseUnit <= 0 {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i)
		}
		if l.LineTotal.IsNegative() {
			return apperror.NewValidation("line total cannot be negative").
				WithDetail("line", i)
		}
		sum = sum.Add(l.LineTotal)
	}

	if !sum.Equal(s.Total) {
		return apperror.NewValidation("sale total does not match sum of line totals").
			WithDetail("total", s.Total.String()).
			WithDetail("lines_total", sum.String())
	}

	if s.AmountGiven.LessThan(s.Total) {
		return apperror.NewInsufficientPayment(s.Total.String(), s.AmountGiven.String())
	}

	return nil
}

// SaleFilter narrows sale history queries.
type SaleFilter struct {
	CashierID      *id.ID
	FromDate       *time.Time
	ToDate         *time.Time
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// SaleRepository defines persistence for sales.
type SaleRepository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetForUpdate loads the sale with a row lock. Must be called inside a
	// transaction; the lock serializes concurrent reversals of the same sale.
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	// MarkDeleted persists the soft-delete fields of an already-marked sale.
	MarkDeleted(ctx context.Context, s *Sale) error

	List(ctx context.Context, filter SaleFilter) ([]*Sale, error)
}
