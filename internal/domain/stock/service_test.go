package stock

import (
	"context"
	"testing"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/catalog/product"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type stubProductRepo struct {
	p *product.Product
}

func (r *stubProductRepo) GetForUpdate(_ context.Context, productID id.ID) (*product.Product, error) {
	if r.p == nil || r.p.ID != productID {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *r.p
	return &cp, nil
}

func (r *stubProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetForUpdate(ctx, productID)
}

func (r *stubProductRepo) UpdateStock(_ context.Context, p *product.Product) error {
	cp := *p
	r.p = &cp
	return nil
}

func (r *stubProductRepo) Create(context.Context, *product.Product) error { return nil }
func (r *stubProductRepo) Update(context.Context, *product.Product) error { return nil }
func (r *stubProductRepo) GetByBarcode(context.Context, string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", "")
}
func (r *stubProductRepo) List(context.Context, product.ListFilter) ([]*product.Product, error) {
	return nil, nil
}
func (r *stubProductRepo) ListAll(context.Context) ([]*product.Product, error) { return nil, nil }
func (r *stubProductRepo) Delete(context.Context, id.ID) error                 { return nil }
func (r *stubProductRepo) CountByCategory(context.Context, id.ID) (int, error) { return 0, nil }

type memMovementRepo struct {
	movements []*Movement
}

func (r *memMovementRepo) Append(_ context.Context, m *Movement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *memMovementRepo) List(context.Context, MovementFilter) ([]*Movement, error) {
	return r.movements, nil
}

func (r *memMovementRepo) SumDeltas(_ context.Context, productID id.ID) (types.BaseQty, error) {
	var sum types.BaseQty
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.QtyChange
		}
	}
	return sum, nil
}

func newTestService(stockQty types.BaseQty) (*Service, *stubProductRepo, *memMovementRepo) {
	p := product.New("Rice", id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight}, types.MustMoney("2.00"))
	p.StockBaseUnit = stockQty
	p.RecalculateStockValue()

	products := &stubProductRepo{p: p}
	movements := &memMovementRepo{}
	return NewService(movements, products, passthroughTxManager{}, nil), products, movements
}

func TestMoveStock_In(t *testing.T) {
	svc, products, movements := newTestService(1000)
	productID := products.p.ID

	result, err := svc.MoveStock(context.Background(), MoveInput{
		ProductID: productID,
		QtyChange: 500,
		Type:      types.MovementIn,
		Reason:    "restock delivery",
		UserID:    id.New(),
	})
	if err != nil {
		t.Fatalf("MoveStock failed: %v", err)
	}

	if result.NewStock != 1500 {
		t.Errorf("new stock = %d, want 1500", result.NewStock)
	}
	if result.Movement.QtyChange != 500 {
		t.Errorf("ledger delta = %d, want 500", result.Movement.QtyChange)
	}
	if products.p.StockBaseUnit != 1500 {
		t.Errorf("persisted stock = %d, want 1500", products.p.StockBaseUnit)
	}
	want := product.StockValue(1500, types.UnitGrams, types.MustMoney("2.00"))
	if !products.p.TotalStockValue.Equal(want) {
		t.Errorf("derived value = %s, want %s", products.p.TotalStockValue, want)
	}
	if len(movements.movements) != 1 {
		t.Errorf("movements = %d, want 1", len(movements.movements))
	}
}

func TestMoveStock_OutNegatesQuantity(t *testing.T) {
	svc, products, _ := newTestService(1000)

	result, err := svc.MoveStock(context.Background(), MoveInput{
		ProductID: products.p.ID,
		QtyChange: 300,
		Type:      types.MovementOut,
		Reason:    "spoilage",
		UserID:    id.New(),
	})
	if err != nil {
		t.Fatalf("MoveStock failed: %v", err)
	}

	if result.NewStock != 700 {
		t.Errorf("new stock = %d, want 700", result.NewStock)
	}
	if result.Movement.QtyChange != -300 {
		t.Errorf("ledger delta = %d, want -300", result.Movement.QtyChange)
	}
}

func TestMoveStock_AdjustmentAcceptsEitherSign(t *testing.T) {
	svc, products, _ := newTestService(1000)
	productID := products.p.ID

	down, err := svc.MoveStock(context.Background(), MoveInput{
		ProductID: productID,
		QtyChange: -200,
		Type:      types.MovementAdjustment,
		Reason:    "inventory count",
		UserID:    id.New(),
	})
	if err != nil {
		t.Fatalf("downward adjustment failed: %v", err)
	}
	if down.NewStock != 800 {
		t.Errorf("new stock = %d, want 800", down.NewStock)
	}

	up, err := svc.MoveStock(context.Background(), MoveInput{
		ProductID: productID,
		QtyChange: 50,
		Type:      types.MovementAdjustment,
		Reason:    "inventory count",
		UserID:    id.New(),
	})
	if err != nil {
		t.Fatalf("upward adjustment failed: %v", err)
	}
	if up.NewStock != 850 {
		t.Errorf("new stock = %d, want 850", up.NewStock)
	}
}

func TestMoveStock_RejectsBelowZero(t *testing.T) {
	svc, products, movements := newTestService(100)

	_, err := svc.MoveStock(context.Background(), MoveInput{
		ProductID: products.p.ID,
		QtyChange: 101,
		Type:      types.MovementOut,
		Reason:    "spoilage",
		UserID:    id.New(),
	})
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if products.p.StockBaseUnit != 100 {
		t.Errorf("stock = %d, want 100 (untouched)", products.p.StockBaseUnit)
	}
	if len(movements.movements) != 0 {
		t.Errorf("movements = %d, want 0", len(movements.movements))
	}
}

func TestMoveStock_InputValidation(t *testing.T) {
	svc, products, _ := newTestService(100)
	productID := products.p.ID

	tests := []struct {
		name  string
		input MoveInput
	}{
		{"zero adjustment", MoveInput{ProductID: productID, QtyChange: 0, Type: types.MovementAdjustment}},
		{"negative in", MoveInput{ProductID: productID, QtyChange: -5, Type: types.MovementIn}},
		{"negative out", MoveInput{ProductID: productID, QtyChange: -5, Type: types.MovementOut}},
		{"unknown type", MoveInput{ProductID: productID, QtyChange: 5, Type: "transfer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.MoveStock(context.Background(), tt.input)
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRecordOpeningStock(t *testing.T) {
	svc, products, movements := newTestService(0)
	productID := products.p.ID

	err := svc.RecordOpeningStock(context.Background(), productID, 5000, types.UnitGrams, id.New())
	if err != nil {
		t.Fatalf("RecordOpeningStock failed: %v", err)
	}

	if len(movements.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(movements.movements))
	}
	m := movements.movements[0]
	if m.Type != types.MovementIn {
		t.Errorf("type = %s, want in", m.Type)
	}
	if m.Reason != ReasonOpeningStock {
		t.Errorf("reason = %q, want %q", m.Reason, ReasonOpeningStock)
	}
	if m.QtyChange != 5000 {
		t.Errorf("delta = %d, want 5000", m.QtyChange)
	}
}

func TestReconcile(t *testing.T) {
	svc, products, movements := newTestService(0)
	productID := products.p.ID
	userID := id.New()

	// Build stock purely through movements; the ledger must reconcile.
	if _, err := svc.MoveStock(context.Background(), MoveInput{
		ProductID: productID, QtyChange: 1000, Type: types.MovementIn, Reason: "restock", UserID: userID,
	}); err != nil {
		t.Fatalf("MoveStock failed: %v", err)
	}
	if _, err := svc.MoveStock(context.Background(), MoveInput{
		ProductID: productID, QtyChange: 400, Type: types.MovementOut, Reason: "spoilage", UserID: userID,
	}); err != nil {
		t.Fatalf("MoveStock failed: %v", err)
	}

	rec, err := svc.Reconcile(context.Background(), productID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !rec.InBalance() {
		t.Errorf("drift = %d, want 0", rec.Drift)
	}
	if rec.LedgerTotal != 600 || rec.CurrentStock != 600 {
		t.Errorf("ledger = %d, stock = %d, want 600, 600", rec.LedgerTotal, rec.CurrentStock)
	}

	// A write that bypassed the ledger shows up as drift.
	movements.movements = movements.movements[:1]
	rec, err = svc.Reconcile(context.Background(), productID)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if rec.InBalance() {
		t.Error("expected drift after dropping a ledger entry")
	}
	if rec.Drift != -400 {
		t.Errorf("drift = %d, want -400", rec.Drift)
	}
}
