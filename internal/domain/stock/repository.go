package stock

import (
	"context"
	"time"

	"posrail/internal/core/id"
	"posrail/internal/core/types"
)

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ProductID     *id.ID
	Type          *types.MovementType
	RelatedSaleID *id.ID
	FromDate      *time.Time
	ToDate        *time.Time
	Limit         int
	Offset        int
}

// Repository defines persistence for the movement ledger.
// The ledger is append-only: there is no update or delete operation.
type Repository interface {
	Append(ctx context.Context, m *Movement) error
	List(ctx context.Context, filter MovementFilter) ([]*Movement, error)

	// SumDeltas returns the sum of all signed deltas for a product,
	// in creation order (order is irrelevant for the sum but the ledger
	// guarantees it for history readers).
	SumDeltas(ctx context.Context, productID id.ID) (types.BaseQty, error)
}
