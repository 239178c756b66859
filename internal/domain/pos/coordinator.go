package pos

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"posrail/internal/core/apperror"
	"posrail/internal/core/entity"
	"posrail/internal/core/id"
	"posrail/internal/core/tx"
	"posrail/internal/core/types"
	"posrail/internal/domain/audit"
	"posrail/internal/domain/catalog/product"
	"posrail/internal/domain/stock"
	"posrail/pkg/logger"
)

// maxRetries bounds re-execution of a checkout or reversal that lost a
// lock/serialization race. The row locks make a retry almost always succeed
// on the first repeat.
const maxRetries = 3

// CheckoutLine is one requested item at the register.
type CheckoutLine struct {
	ProductID   id.ID          `json:"productId"`
	SaleMode    types.SaleMode `json:"saleMode"`
	QtyBaseUnit types.BaseQty  `json:"qtyBaseUnit"`
}

// CheckoutInput is the full checkout request.
type CheckoutInput struct {
	Lines   []CheckoutLine `json:"lines"`
	Payment PaymentMethod  `json:"paymentMethod"`

	// AmountGiven is the tendered amount. Nil means exact payment: it
	// defaults to the computed total.
	AmountGiven *types.Money `json:"amountGiven,omitempty"`

	CashierID id.ID `json:"-"`
}

// Coordinator executes sales and reversals as atomic multi-record
// transactions across the sale, product and movement stores.
type Coordinator struct {
	sales     SaleRepository
	products  product.Repository
	movements stock.Repository
	txManager tx.Manager
	auditor   audit.Recorder
	now       func() time.Time
}

// NewCoordinator creates a transaction coordinator.
func NewCoordinator(sales SaleRepository, products product.Repository, movements stock.Repository, txManager tx.Manager, auditor audit.Recorder) *Coordinator {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Coordinator{
		sales:     sales,
		products:  products,
		movements: movements,
		txManager: txManager,
		auditor:   auditor,
		now:       time.Now,
	}
}

// ExecuteSale performs a checkout.
//
// All lines are validated against locked product rows before any write: a
// failure on the last line leaves every product untouched. The sale record,
// the stock decrements and the `out` movements commit in one transaction.
func (c *Coordinator) ExecuteSale(ctx context.Context, input CheckoutInput) (*Sale, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewEmptyCart()
	}
	if !input.Payment.Valid() {
		return nil, apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(input.Payment))
	}
	if id.IsNil(input.CashierID) {
		return nil, apperror.NewUnauthorized("checkout requires an authenticated user")
	}
	for i, l := range input.Lines {
		if id.IsNil(l.ProductID) {
			return nil, apperror.NewValidation("line product is required").
				WithDetail("line", i)
		}
		if !l.SaleMode.Valid() {
			return nil, apperror.NewValidation("invalid sale mode").
				WithDetail("line", i).
				WithDetail("value", string(l.SaleMode))
		}
		if l.QtyBaseUnit <= 0 {
			return nil, apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i)
		}
	}

	var sale *Sale
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			var err error
			sale, err = c.executeSaleTx(ctx, input)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale executed",
		"sale_id", sale.ID,
		"lines", len(sale.Lines),
		"total", sale.Total.String(),
		"cashier_id", sale.CashierID,
	)
	return sale, nil
}

func (c *Coordinator) executeSaleTx(ctx context.Context, input CheckoutInput) (*Sale, error) {
	ids := make([]id.ID, 0, len(input.Lines))
	for _, l := range input.Lines {
		ids = append(ids, l.ProductID)
	}

	locked, err := c.lockProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Validation phase: simulate every decrement against a working copy of
	// each product's stock so duplicate lines for the same product are
	// checked cumulatively. Nothing is written until all lines pass.
	working := make(map[id.ID]types.BaseQty, len(locked))
	for pid, p := range locked {
		working[pid] = p.StockBaseUnit
	}

	lines := make([]SaleLine, 0, len(input.Lines))
	total := decimal.Zero
	for _, l := range input.Lines {
		p := locked[l.ProductID]

		if !p.SupportsMode(l.SaleMode) {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "product does not support this sale mode").
				WithDetail("product_id", p.ID.String()).
				WithDetail("sale_mode", string(l.SaleMode))
		}

		remaining := working[l.ProductID]
		if remaining < l.QtyBaseUnit {
			return nil, apperror.NewInsufficientStock(p.ID.String(), l.QtyBaseUnit.Int64(), remaining.Int64())
		}
		working[l.ProductID] = remaining - l.QtyBaseUnit

		lineTotal := p.PriceFor(l.SaleMode, l.QtyBaseUnit)
		total = total.Add(lineTotal)
		lines = append(lines, SaleLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			SaleMode:    l.SaleMode,
			QtyBaseUnit: l.QtyBaseUnit,
			UnitKind:    p.UnitKind,
			LineTotal:   lineTotal,
		})
	}

	amountGiven := total
	if input.AmountGiven != nil {
		amountGiven = *input.AmountGiven
	}
	if amountGiven.LessThan(total) {
		return nil, apperror.NewInsufficientPayment(total.String(), amountGiven.String())
	}

	sale := &Sale{
		Base:        entity.NewBase(),
		Lines:       lines,
		Total:       total,
		AmountGiven: amountGiven,
		Change:      amountGiven.Sub(total),
		Payment:     input.Payment,
		CashierID:   input.CashierID,
	}
	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}

	// Mutation phase. Each product's new stock is its validated working
	// copy, so ApplyStockDelta cannot fail here.
	for _, p := range locked {
		delta := working[p.ID] - p.StockBaseUnit
		if delta == 0 {
			continue
		}
		if err := p.ApplyStockDelta(delta); err != nil {
			return nil, err
		}
		if err := c.products.UpdateStock(ctx, p); err != nil {
			return nil, err
		}
	}

	if err := c.sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	saleID := sale.ID
	for _, l := range sale.Lines {
		m := stock.NewMovement(l.ProductID, l.QtyBaseUnit.Neg(), l.UnitKind, types.MovementOut, stock.ReasonSale, sale.CashierID, &saleID)
		if err := c.movements.Append(ctx, m); err != nil {
			return nil, err
		}
	}

	if err := c.auditor.Record(ctx, audit.Entry{
		EntityType: "sale",
		EntityID:   sale.ID,
		Action:     audit.ActionCreate,
		UserID:     sale.CashierID.String(),
		Changes: map[string]any{
			"total": sale.Total.String(),
			"lines": len(sale.Lines),
		},
	}); err != nil {
		return nil, err
	}

	return sale, nil
}

// ReverseSale soft-deletes a sale and restores the stock it consumed.
//
// Products that no longer exist are skipped: their stock cannot be restored,
// but the reversal of the remaining lines still succeeds.
func (c *Coordinator) ReverseSale(ctx context.Context, saleID, userID id.ID) (*Sale, error) {
	var sale *Sale
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			var err error
			sale, err = c.reverseSaleTx(ctx, saleID, userID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale reversed",
		"sale_id", sale.ID,
		"deleted_by", userID,
	)
	return sale, nil
}

func (c *Coordinator) reverseSaleTx(ctx context.Context, saleID, userID id.ID) (*Sale, error) {
	sale, err := c.sales.GetForUpdate(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := sale.MarkDeleted(userID, c.now().UTC()); err != nil {
		return nil, err
	}

	ids := make([]id.ID, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		ids = append(ids, l.ProductID)
	}

	locked, err := c.lockProductsTolerant(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Restore per line so duplicate lines for one product each add back.
	restored := make(map[id.ID]bool)
	for _, l := range sale.Lines {
		p, ok := locked[l.ProductID]
		if !ok {
			logger.Warn(ctx, "product missing during sale reversal, stock not restored",
				"sale_id", sale.ID,
				"product_id", l.ProductID,
			)
			continue
		}
		if err := p.ApplyStockDelta(l.QtyBaseUnit); err != nil {
			return nil, err
		}
		restored[p.ID] = true

		m := stock.NewMovement(p.ID, l.QtyBaseUnit, p.UnitKind, types.MovementIn, stock.ReasonSaleReversal, userID, &saleID)
		if err := c.movements.Append(ctx, m); err != nil {
			return nil, err
		}
	}
	for pid := range restored {
		if err := c.products.UpdateStock(ctx, locked[pid]); err != nil {
			return nil, err
		}
	}

	if err := c.sales.MarkDeleted(ctx, sale); err != nil {
		return nil, err
	}

	if err := c.auditor.Record(ctx, audit.Entry{
		EntityType: "sale",
		EntityID:   sale.ID,
		Action:     audit.ActionReverse,
		UserID:     userID.String(),
		Changes: map[string]any{
			"total":           sale.Total.String(),
			"lines":           len(sale.Lines),
			"stock_restored":  len(restored),
			"missing_skipped": len(sale.Lines) - countRestoredLines(sale.Lines, restored),
		},
	}); err != nil {
		return nil, err
	}

	return sale, nil
}

func countRestoredLines(lines []SaleLine, restored map[id.ID]bool) int {
	n := 0
	for _, l := range lines {
		if restored[l.ProductID] {
			n++
		}
	}
	return n
}

// GetByID returns a sale, deleted or not.
func (c *Coordinator) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return c.sales.GetByID(ctx, saleID)
}

// List returns sale history.
func (c *Coordinator) List(ctx context.Context, filter SaleFilter) ([]*Sale, error) {
	return c.sales.List(ctx, filter)
}

// lockProducts row-locks every referenced product in canonical order and
// fails if any is missing.
func (c *Coordinator) lockProducts(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	locked := make(map[id.ID]*product.Product, len(ids))
	for _, pid := range canonicalLockOrder(ids) {
		p, err := c.products.GetForUpdate(ctx, pid)
		if err != nil {
			return nil, err
		}
		locked[pid] = p
	}
	return locked, nil
}

// lockProductsTolerant is lockProducts for reversal: missing products are
// omitted from the result instead of failing the operation.
func (c *Coordinator) lockProductsTolerant(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	locked := make(map[id.ID]*product.Product, len(ids))
	for _, pid := range canonicalLockOrder(ids) {
		p, err := c.products.GetForUpdate(ctx, pid)
		if apperror.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		locked[pid] = p
	}
	return locked, nil
}

// canonicalLockOrder deduplicates product ids and sorts them by their byte
// representation. All multi-product transactions acquire row locks in this
// order, which rules out lock-order deadlocks between concurrent checkouts.
func canonicalLockOrder(ids []id.ID) []id.ID {
	seen := make(map[id.ID]struct{}, len(ids))
	out := make([]id.ID, 0, len(ids))
	for _, pid := range ids {
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	slices.SortFunc(out, func(a, b id.ID) int {
		return bytes.Compare(a[:], b[:])
	})
	return out
}

// withRetry re-runs fn on lock/serialization contention, up to maxRetries
// attempts. Any other error aborts immediately.
func (c *Coordinator) withRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn(ctx)
		if err == nil || !apperror.IsConcurrentModification(err) {
			return err
		}
		logger.Warn(ctx, "transaction contention, retrying",
			"attempt", attempt,
			"max_retries", maxRetries,
		)
	}
	return err
}
