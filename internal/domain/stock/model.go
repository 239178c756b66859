// Package stock provides the append-only stock movement ledger and the
// direct stock adjustment operation.
package stock

import (
	"time"

	"posrail/internal/core/id"
	"posrail/internal/core/types"
)

// Reasons recorded by the system's own stock-affecting paths.
const (
	ReasonSale         = "sale"
	ReasonSaleReversal = "sale reversal"
	ReasonOpeningStock = "opening stock"
)

// Movement is one append-only ledger entry: a single signed quantity change
// applied to a product's stock.
//
// Movements are immutable — they are never updated or deleted. Creation
// order is significant: summing deltas in creation order reconstructs the
// product's stock history.
type Movement struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// QtyChange is the signed delta in base units (negative = decrease).
	QtyChange types.BaseQty `db:"qty_change" json:"qtyChange"`

	UnitKind types.UnitKind     `db:"unit_kind" json:"unitKind"`
	Type     types.MovementType `db:"type" json:"type"`
	Reason   string             `db:"reason" json:"reason"`

	// UserID is the acting user (cashier for sales, admin for adjustments).
	UserID id.ID `db:"user_id" json:"userId"`

	// RelatedSaleID links sale-caused movements to their sale.
	RelatedSaleID *id.ID `db:"related_sale_id" json:"relatedSaleId,omitempty"`
}

// NewMovement creates a ledger entry with generated id and timestamp.
func NewMovement(productID id.ID, qtyChange types.BaseQty, unitKind types.UnitKind, movType types.MovementType, reason string, userID id.ID, relatedSaleID *id.ID) *Movement {
	return &Movement{
		ID:            id.New(),
		CreatedAt:     time.Now().UTC(),
		ProductID:     productID,
		QtyChange:     qtyChange,
		UnitKind:      unitKind,
		Type:          movType,
		Reason:        reason,
		UserID:        userID,
		RelatedSaleID: relatedSaleID,
	}
}

// Reconciliation compares the ledger against a product's current stock.
// Drift must be zero for a healthy product.
type Reconciliation struct {
	ProductID    id.ID         `json:"productId"`
	LedgerTotal  types.BaseQty `json:"ledgerTotal"`
	CurrentStock types.BaseQty `json:"currentStock"`
	Drift        types.BaseQty `json:"drift"`
}

// InBalance reports whether ledger and current stock agree.
func (r Reconciliation) InBalance() bool {
	return r.Drift == 0
}
