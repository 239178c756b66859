package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memProductRepo struct {
	products map[id.ID]*Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[id.ID]*Product)}
}

func (r *memProductRepo) Create(_ context.Context, p *Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Update(_ context.Context, p *Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateStock(ctx context.Context, p *Product) error {
	return r.Update(ctx, p)
}

func (r *memProductRepo) GetByID(_ context.Context, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *memProductRepo) GetByBarcode(_ context.Context, barcode string) (*Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", barcode)
}

func (r *memProductRepo) List(context.Context, ListFilter) ([]*Product, error) { return nil, nil }
func (r *memProductRepo) ListAll(context.Context) ([]*Product, error)          { return nil, nil }
func (r *memProductRepo) Delete(_ context.Context, productID id.ID) error {
	delete(r.products, productID)
	return nil
}
func (r *memProductRepo) CountByCategory(context.Context, id.ID) (int, error) { return 0, nil }

type openingStockCall struct {
	productID id.ID
	qty       types.BaseQty
	unitKind  types.UnitKind
	userID    id.ID
}

type openingStockSpy struct {
	calls []openingStockCall
}

func (s *openingStockSpy) RecordOpeningStock(_ context.Context, productID id.ID, qty types.BaseQty, unitKind types.UnitKind, userID id.ID) error {
	s.calls = append(s.calls, openingStockCall{productID, qty, unitKind, userID})
	return nil
}

func TestServiceCreate_RecordsOpeningStock(t *testing.T) {
	repo := newMemProductRepo()
	spy := &openingStockSpy{}
	svc := NewService(repo, spy, passthroughTxManager{})
	actor := id.New()

	p := New("Rice", id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight}, types.MustMoney("2.00"))
	p.PricePerKg = types.MustMoney("4.00")
	p.StockBaseUnit = 5000
	p.RecalculateStockValue()

	assert.NoError(t, svc.Create(context.Background(), p, actor))

	assert.Len(t, spy.calls, 1)
	call := spy.calls[0]
	assert.Equal(t, p.ID, call.productID)
	assert.Equal(t, types.BaseQty(5000), call.qty)
	assert.Equal(t, types.UnitGrams, call.unitKind)
	assert.Equal(t, actor, call.userID)
}

func TestServiceCreate_NoOpeningStockForZeroStock(t *testing.T) {
	repo := newMemProductRepo()
	spy := &openingStockSpy{}
	svc := NewService(repo, spy, passthroughTxManager{})

	p := New("Soda", id.New(), types.UnitPieces,
		[]types.SaleMode{types.SaleModeUnit}, types.MustMoney("0.60"))

	assert.NoError(t, svc.Create(context.Background(), p, id.New()))
	assert.Empty(t, spy.calls)
}

func TestServiceCreate_DuplicateBarcode(t *testing.T) {
	repo := newMemProductRepo()
	svc := NewService(repo, &openingStockSpy{}, passthroughTxManager{})
	barcode := "4601234567890"

	first := New("Soda", id.New(), types.UnitPieces,
		[]types.SaleMode{types.SaleModeUnit}, types.MustMoney("0.60"))
	first.Barcode = &barcode
	assert.NoError(t, svc.Create(context.Background(), first, id.New()))

	second := New("Other Soda", id.New(), types.UnitPieces,
		[]types.SaleMode{types.SaleModeUnit}, types.MustMoney("0.60"))
	second.Barcode = &barcode
	err := svc.Create(context.Background(), second, id.New())

	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestServiceUpdate_PreservesStockAndRederivesValue(t *testing.T) {
	repo := newMemProductRepo()
	svc := NewService(repo, &openingStockSpy{}, passthroughTxManager{})

	p := New("Rice", id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight}, types.MustMoney("2.00"))
	p.PricePerKg = types.MustMoney("4.00")
	p.StockBaseUnit = 5000
	p.RecalculateStockValue()
	assert.NoError(t, svc.Create(context.Background(), p, id.New()))

	// An edit that tries to smuggle in a new stock quantity.
	edit := *p
	edit.StockBaseUnit = 999_999
	edit.CostPrice = types.MustMoney("3.00")

	assert.NoError(t, svc.Update(context.Background(), &edit))

	stored, err := repo.GetByID(context.Background(), p.ID)
	assert.NoError(t, err)
	assert.Equal(t, types.BaseQty(5000), stored.StockBaseUnit, "stock must survive catalog edits")
	want := StockValue(5000, types.UnitGrams, types.MustMoney("3.00"))
	assert.True(t, stored.TotalStockValue.Equal(want),
		"derived value = %s, want %s", stored.TotalStockValue, want)
}
