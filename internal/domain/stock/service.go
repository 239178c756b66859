package stock

import (
	"context"
	"fmt"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/tx"
	"posrail/internal/core/types"
	"posrail/internal/domain/audit"
	"posrail/internal/domain/catalog/product"
	"posrail/pkg/logger"
)

// MoveInput describes a direct stock adjustment request.
type MoveInput struct {
	ProductID id.ID

	// QtyChange is interpreted per movement type:
	//   in:         positive receipt quantity
	//   out:        positive issue quantity
	//   adjustment: signed correction (either direction)
	QtyChange types.BaseQty

	Type   types.MovementType
	Reason string
	UserID id.ID
}

// MoveResult is the outcome of a committed stock movement.
type MoveResult struct {
	Movement *Movement     `json:"movement"`
	NewStock types.BaseQty `json:"newStock"`
}

// Service applies direct stock movements and answers ledger queries.
type Service struct {
	movements Repository
	products  product.Repository
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a stock service.
func NewService(movements Repository, products product.Repository, txManager tx.Manager, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		movements: movements,
		products:  products,
		txManager: txManager,
		auditor:   auditor,
	}
}

// MoveStock applies one manual stock change as a single atomic unit:
// product write plus ledger append commit together or not at all.
//
// The product row is locked for the duration of the check and write, so the
// insufficient-stock check cannot interleave with another writer.
func (s *Service) MoveStock(ctx context.Context, input MoveInput) (*MoveResult, error) {
	delta, err := signedDelta(input)
	if err != nil {
		return nil, err
	}

	var result *MoveResult
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}

		if err := p.ApplyStockDelta(delta); err != nil {
			return err
		}
		if err := s.products.UpdateStock(ctx, p); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		m := NewMovement(p.ID, delta, p.UnitKind, input.Type, input.Reason, input.UserID, nil)
		if err := s.movements.Append(ctx, m); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		if err := s.auditor.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   p.ID,
			Action:     audit.ActionAdjust,
			UserID:     input.UserID.String(),
			Changes: map[string]any{
				"type":       input.Type,
				"qty_change": delta.Int64(),
				"reason":     input.Reason,
				"new_stock":  p.StockBaseUnit.Int64(),
			},
		}); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}

		result = &MoveResult{Movement: m, NewStock: p.StockBaseUnit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock moved",
		"product_id", input.ProductID,
		"type", input.Type,
		"qty_change", delta.Int64(),
		"new_stock", result.NewStock.Int64(),
	)
	return result, nil
}

// signedDelta validates the input and maps it to the signed ledger delta.
// Adjustments accept either sign; in/out require positive magnitudes.
func signedDelta(input MoveInput) (types.BaseQty, error) {
	if !input.Type.Valid() {
		return 0, apperror.NewValidation("invalid movement type").
			WithDetail("field", "type").
			WithDetail("value", string(input.Type))
	}

	switch input.Type {
	case types.MovementIn:
		if input.QtyChange <= 0 {
			return 0, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "qtyChangeBaseUnit")
		}
		return input.QtyChange, nil
	case types.MovementOut:
		if input.QtyChange <= 0 {
			return 0, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "qtyChangeBaseUnit")
		}
		return input.QtyChange.Neg(), nil
	default: // adjustment
		if input.QtyChange == 0 {
			return 0, apperror.NewValidation("adjustment quantity cannot be zero").
				WithDetail("field", "qtyChangeBaseUnit")
		}
		return input.QtyChange, nil
	}
}

// RecordOpeningStock appends the `in` movement for a product created with
// initial stock. Implements product.OpeningStockRecorder.
func (s *Service) RecordOpeningStock(ctx context.Context, productID id.ID, qty types.BaseQty, unitKind types.UnitKind, userID id.ID) error {
	m := NewMovement(productID, qty, unitKind, types.MovementIn, ReasonOpeningStock, userID, nil)
	return s.movements.Append(ctx, m)
}

// Movements returns ledger history, newest first.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]*Movement, error) {
	return s.movements.List(ctx, filter)
}

// Reconcile checks the ledger against a product's current stock.
//
// Because opening stock is itself a ledger entry, the sum of all deltas must
// equal the current quantity exactly; any drift indicates a write path that
// bypassed the coordinator or stock service.
func (s *Service) Reconcile(ctx context.Context, productID id.ID) (Reconciliation, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Reconciliation{}, err
	}

	total, err := s.movements.SumDeltas(ctx, productID)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("sum ledger: %w", err)
	}

	rec := Reconciliation{
		ProductID:    productID,
		LedgerTotal:  total,
		CurrentStock: p.StockBaseUnit,
		Drift:        p.StockBaseUnit - total,
	}
	if !rec.InBalance() {
		logger.Warn(ctx, "ledger drift detected",
			"product_id", productID,
			"ledger_total", total.Int64(),
			"current_stock", p.StockBaseUnit.Int64(),
		)
	}
	return rec, nil
}

var _ product.OpeningStockRecorder = (*Service)(nil)
