package pos

import (
	"context"
	"sync"
	"testing"
	"time"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/catalog/product"
	"posrail/internal/domain/stock"
)

// --- fakes ---

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeProductRepo struct {
	products map[id.ID]*product.Product

	lockCalls int
	lockOrder []id.ID

	// failLocks makes the next N GetForUpdate calls fail with contention.
	failLocks int
}

func newFakeProductRepo(products ...*product.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		r.products[p.ID] = cloneProduct(p)
	}
	return r
}

func cloneProduct(p *product.Product) *product.Product {
	cp := *p
	cp.SaleModes = append([]types.SaleMode(nil), p.SaleModes...)
	return &cp
}

func (r *fakeProductRepo) GetForUpdate(_ context.Context, productID id.ID) (*product.Product, error) {
	r.lockCalls++
	if r.failLocks > 0 {
		r.failLocks--
		return nil, apperror.NewConcurrentModification("product", productID.String())
	}
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	r.lockOrder = append(r.lockOrder, productID)
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, p *product.Product) error {
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *product.Product) error {
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *product.Product) error {
	r.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *fakeProductRepo) GetByBarcode(context.Context, string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", "")
}

func (r *fakeProductRepo) List(context.Context, product.ListFilter) ([]*product.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) ListAll(context.Context) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, productID id.ID) error {
	delete(r.products, productID)
	return nil
}

func (r *fakeProductRepo) CountByCategory(context.Context, id.ID) (int, error) {
	return 0, nil
}

type fakeSaleRepo struct {
	sales map[id.ID]*Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[id.ID]*Sale)}
}

func cloneSale(s *Sale) *Sale {
	cp := *s
	cp.Lines = append([]SaleLine(nil), s.Lines...)
	return &cp
}

func (r *fakeSaleRepo) Create(_ context.Context, s *Sale) error {
	r.sales[s.ID] = cloneSale(s)
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, saleID id.ID) (*Sale, error) {
	s, ok := r.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return cloneSale(s), nil
}

func (r *fakeSaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error) {
	return r.GetByID(ctx, saleID)
}

func (r *fakeSaleRepo) MarkDeleted(_ context.Context, s *Sale) error {
	r.sales[s.ID] = cloneSale(s)
	return nil
}

func (r *fakeSaleRepo) List(context.Context, SaleFilter) ([]*Sale, error) {
	out := make([]*Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, cloneSale(s))
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []*stock.Movement
}

func (r *fakeMovementRepo) Append(_ context.Context, m *stock.Movement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) List(context.Context, stock.MovementFilter) ([]*stock.Movement, error) {
	return r.movements, nil
}

func (r *fakeMovementRepo) SumDeltas(_ context.Context, productID id.ID) (types.BaseQty, error) {
	var sum types.BaseQty
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.QtyChange
		}
	}
	return sum, nil
}

func (r *fakeMovementRepo) byProduct(productID id.ID) []*stock.Movement {
	var out []*stock.Movement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// --- helpers ---

func pieceProduct(name string, stockQty types.BaseQty, pricePerUnit string) *product.Product {
	p := product.New(name, id.New(), types.UnitPieces,
		[]types.SaleMode{types.SaleModeUnit}, types.MustMoney("1.00"))
	p.PricePerUnit = types.MustMoney(pricePerUnit)
	p.StockBaseUnit = stockQty
	p.RecalculateStockValue()
	return p
}

func gramProduct(name string, stockGrams types.BaseQty, pricePerKg string) *product.Product {
	p := product.New(name, id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight, types.SaleModeCup}, types.MustMoney("2.00"))
	p.PricePerKg = types.MustMoney(pricePerKg)
	p.PricePerCup = types.MustMoney("5.00")
	p.StockBaseUnit = stockGrams
	p.RecalculateStockValue()
	return p
}

type testEnv struct {
	coordinator *Coordinator
	products    *fakeProductRepo
	sales       *fakeSaleRepo
	movements   *fakeMovementRepo
}

func newTestEnv(products ...*product.Product) *testEnv {
	productRepo := newFakeProductRepo(products...)
	saleRepo := newFakeSaleRepo()
	movementRepo := &fakeMovementRepo{}
	return &testEnv{
		coordinator: NewCoordinator(saleRepo, productRepo, movementRepo, passthroughTxManager{}, nil),
		products:    productRepo,
		sales:       saleRepo,
		movements:   movementRepo,
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError with code %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("error code = %s, want %s (err: %v)", appErr.Code, code, err)
	}
}

func stockOf(t *testing.T, env *testEnv, productID id.ID) types.BaseQty {
	t.Helper()
	p, err := env.products.GetByID(context.Background(), productID)
	if err != nil {
		t.Fatalf("product lookup failed: %v", err)
	}
	return p.StockBaseUnit
}

// --- checkout ---

func TestExecuteSale_EmptyCart(t *testing.T) {
	env := newTestEnv()

	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	requireCode(t, err, apperror.CodeEmptyCart)
}

func TestExecuteSale_InvalidPaymentMethod(t *testing.T) {
	p := pieceProduct("Soda", 10, "1.20")
	env := newTestEnv(p)

	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
		},
		Payment:   "bitcoin",
		CashierID: id.New(),
	})
	requireCode(t, err, apperror.CodeValidation)

	if got := stockOf(t, env, p.ID); got != 10 {
		t.Errorf("stock = %d, want 10 (untouched)", got)
	}
}

func TestExecuteSale_Success(t *testing.T) {
	soda := pieceProduct("Soda", 10, "1.20")
	rice := gramProduct("Rice", 50_000, "4.00")
	env := newTestEnv(soda, rice)
	cashier := id.New()

	given := types.MustMoney("20.00")
	sale, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: soda.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 3},
			{ProductID: rice.ID, SaleMode: types.SaleModeWeight, QtyBaseUnit: 2500},
		},
		Payment:     PaymentCash,
		AmountGiven: &given,
		CashierID:   cashier,
	})
	if err != nil {
		t.Fatalf("ExecuteSale failed: %v", err)
	}

	// 3 * 1.20 + 2.5kg * 4.00 = 13.60
	if !sale.Total.Equal(types.MustMoney("13.60")) {
		t.Errorf("total = %s, want 13.60", sale.Total)
	}
	if !sale.Change.Equal(types.MustMoney("6.40")) {
		t.Errorf("change = %s, want 6.40", sale.Change)
	}
	if sale.CashierID != cashier {
		t.Errorf("cashier = %s, want %s", sale.CashierID, cashier)
	}

	if got := stockOf(t, env, soda.ID); got != 7 {
		t.Errorf("soda stock = %d, want 7", got)
	}
	if got := stockOf(t, env, rice.ID); got != 47_500 {
		t.Errorf("rice stock = %d, want 47500", got)
	}

	// Derived value follows the stock write.
	p, _ := env.products.GetByID(context.Background(), rice.ID)
	want := product.StockValue(47_500, types.UnitGrams, types.MustMoney("2.00"))
	if !p.TotalStockValue.Equal(want) {
		t.Errorf("rice stock value = %s, want %s", p.TotalStockValue, want)
	}

	// The sale is persisted.
	if _, err := env.sales.GetByID(context.Background(), sale.ID); err != nil {
		t.Errorf("sale not persisted: %v", err)
	}

	// One `out` movement per line, negative, linked to the sale.
	if len(env.movements.movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(env.movements.movements))
	}
	sodaMoves := env.movements.byProduct(soda.ID)
	if len(sodaMoves) != 1 {
		t.Fatalf("soda movements = %d, want 1", len(sodaMoves))
	}
	m := sodaMoves[0]
	if m.QtyChange != -3 {
		t.Errorf("qty change = %d, want -3", m.QtyChange)
	}
	if m.Type != types.MovementOut {
		t.Errorf("type = %s, want out", m.Type)
	}
	if m.Reason != stock.ReasonSale {
		t.Errorf("reason = %q, want %q", m.Reason, stock.ReasonSale)
	}
	if m.RelatedSaleID == nil || *m.RelatedSaleID != sale.ID {
		t.Errorf("movement not linked to sale %s", sale.ID)
	}
	if m.UserID != cashier {
		t.Errorf("movement user = %s, want cashier %s", m.UserID, cashier)
	}
}

func TestExecuteSale_AmountGivenDefaultsToTotal(t *testing.T) {
	p := pieceProduct("Soda", 10, "1.20")
	env := newTestEnv(p)

	sale, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 2},
		},
		Payment:   PaymentCard,
		CashierID: id.New(),
	})
	if err != nil {
		t.Fatalf("ExecuteSale failed: %v", err)
	}
	if !sale.AmountGiven.Equal(sale.Total) {
		t.Errorf("amount given = %s, want total %s", sale.AmountGiven, sale.Total)
	}
	if !sale.Change.IsZero() {
		t.Errorf("change = %s, want 0", sale.Change)
	}
}

func TestExecuteSale_InsufficientPayment(t *testing.T) {
	p := pieceProduct("Soda", 10, "1.20")
	env := newTestEnv(p)

	given := types.MustMoney("1.00")
	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 2},
		},
		Payment:     PaymentCash,
		AmountGiven: &given,
		CashierID:   id.New(),
	})
	requireCode(t, err, apperror.CodeInsufficientPayment)

	if got := stockOf(t, env, p.ID); got != 10 {
		t.Errorf("stock = %d, want 10 (untouched)", got)
	}
	if len(env.movements.movements) != 0 {
		t.Errorf("movements = %d, want 0", len(env.movements.movements))
	}
}

func TestExecuteSale_FailureOnLastLineLeavesAllStockUntouched(t *testing.T) {
	a := pieceProduct("A", 100, "1.00")
	b := pieceProduct("B", 1, "1.00")
	env := newTestEnv(a, b)

	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: a.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 5},
			{ProductID: b.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 2},
		},
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	requireCode(t, err, apperror.CodeInsufficientStock)

	if got := stockOf(t, env, a.ID); got != 100 {
		t.Errorf("stock of A = %d, want 100 (untouched)", got)
	}
	if got := stockOf(t, env, b.ID); got != 1 {
		t.Errorf("stock of B = %d, want 1 (untouched)", got)
	}
	if len(env.movements.movements) != 0 {
		t.Errorf("movements = %d, want 0", len(env.movements.movements))
	}
	if len(env.sales.sales) != 0 {
		t.Errorf("sales = %d, want 0", len(env.sales.sales))
	}
}

func TestExecuteSale_DuplicateLinesCheckedCumulatively(t *testing.T) {
	p := pieceProduct("Soda", 5, "1.20")
	env := newTestEnv(p)

	// 3 + 3 exceeds the 5 in stock even though each line alone fits.
	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 3},
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 3},
		},
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	requireCode(t, err, apperror.CodeInsufficientStock)

	if got := stockOf(t, env, p.ID); got != 5 {
		t.Errorf("stock = %d, want 5 (untouched)", got)
	}

	// 3 + 2 fits exactly.
	sale, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 3},
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 2},
		},
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	if err != nil {
		t.Fatalf("ExecuteSale failed: %v", err)
	}
	if len(sale.Lines) != 2 {
		t.Errorf("lines = %d, want 2", len(sale.Lines))
	}
	if got := stockOf(t, env, p.ID); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestExecuteSale_UnsupportedSaleMode(t *testing.T) {
	p := pieceProduct("Soda", 10, "1.20")
	env := newTestEnv(p)

	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeWeight, QtyBaseUnit: 500},
		},
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	requireCode(t, err, apperror.CodeBusinessRule)
}

func TestExecuteSale_UnknownProduct(t *testing.T) {
	env := newTestEnv()

	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: id.New(), SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
		},
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	requireCode(t, err, apperror.CodeNotFound)
}

func TestExecuteSale_RetriesOnContention(t *testing.T) {
	p := pieceProduct("Soda", 10, "1.20")
	env := newTestEnv(p)
	env.products.failLocks = 2 // first two attempts lose the lock race

	sale, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
		},
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	if err != nil {
		t.Fatalf("ExecuteSale failed after retries: %v", err)
	}
	if sale == nil {
		t.Fatal("expected a committed sale")
	}
	if env.products.lockCalls != 3 {
		t.Errorf("lock attempts = %d, want 3", env.products.lockCalls)
	}
	if got := stockOf(t, env, p.ID); got != 9 {
		t.Errorf("stock = %d, want 9", got)
	}
}

func TestExecuteSale_RetriesExhausted(t *testing.T) {
	p := pieceProduct("Soda", 10, "1.20")
	env := newTestEnv(p)
	env.products.failLocks = 100

	_, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines: []CheckoutLine{
			{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
		},
		Payment:   PaymentCash,
		CashierID: id.New(),
	})
	requireCode(t, err, apperror.CodeConcurrentModification)

	if env.products.lockCalls != maxRetries {
		t.Errorf("lock attempts = %d, want %d", env.products.lockCalls, maxRetries)
	}
}

// serializedTxManager runs transactions under a mutex, mimicking the
// serialization the row locks provide in production.
type serializedTxManager struct {
	mu sync.Mutex
}

func (m *serializedTxManager) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func TestExecuteSale_ConcurrentCheckoutsOfLastItem(t *testing.T) {
	p := pieceProduct("Soda", 1, "1.20")
	productRepo := newFakeProductRepo(p)
	saleRepo := newFakeSaleRepo()
	movementRepo := &fakeMovementRepo{}
	coordinator := NewCoordinator(saleRepo, productRepo, movementRepo, &serializedTxManager{}, nil)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coordinator.ExecuteSale(context.Background(), CheckoutInput{
				Lines: []CheckoutLine{
					{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
				},
				Payment:   PaymentCash,
				CashierID: id.New(),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, shortages int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case apperror.IsInsufficientStock(err):
			shortages++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || shortages != 1 {
		t.Fatalf("successes = %d, shortages = %d, want exactly one of each", successes, shortages)
	}

	stored, err := productRepo.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("product lookup failed: %v", err)
	}
	if stored.StockBaseUnit != 0 {
		t.Errorf("stock = %d, want 0", stored.StockBaseUnit)
	}
	if len(saleRepo.sales) != 1 {
		t.Errorf("sales = %d, want 1", len(saleRepo.sales))
	}
	if len(movementRepo.movements) != 1 {
		t.Errorf("movements = %d, want 1", len(movementRepo.movements))
	}
}

// --- reversal ---

func checkout(t *testing.T, env *testEnv, cashier id.ID, lines ...CheckoutLine) *Sale {
	t.Helper()
	sale, err := env.coordinator.ExecuteSale(context.Background(), CheckoutInput{
		Lines:     lines,
		Payment:   PaymentCash,
		CashierID: cashier,
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return sale
}

func TestReverseSale_RestoresStock(t *testing.T) {
	soda := pieceProduct("Soda", 10, "1.20")
	rice := gramProduct("Rice", 50_000, "4.00")
	env := newTestEnv(soda, rice)
	cashier := id.New()
	admin := id.New()

	sale := checkout(t, env, cashier,
		CheckoutLine{ProductID: soda.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 4},
		CheckoutLine{ProductID: rice.ID, SaleMode: types.SaleModeWeight, QtyBaseUnit: 1500},
	)

	reversed, err := env.coordinator.ReverseSale(context.Background(), sale.ID, admin)
	if err != nil {
		t.Fatalf("ReverseSale failed: %v", err)
	}

	if !reversed.IsDeleted() {
		t.Error("sale not marked deleted")
	}
	if reversed.DeletedBy == nil || *reversed.DeletedBy != admin {
		t.Error("DeletedBy not set to the reversing user")
	}

	if got := stockOf(t, env, soda.ID); got != 10 {
		t.Errorf("soda stock = %d, want 10 (restored)", got)
	}
	if got := stockOf(t, env, rice.ID); got != 50_000 {
		t.Errorf("rice stock = %d, want 50000 (restored)", got)
	}

	// The soft delete is persisted.
	stored, err := env.sales.GetByID(context.Background(), sale.ID)
	if err != nil {
		t.Fatalf("sale lookup failed: %v", err)
	}
	if !stored.IsDeleted() {
		t.Error("soft delete not persisted")
	}

	// Ledger: 2 out from checkout + 2 compensating in from reversal.
	if len(env.movements.movements) != 4 {
		t.Fatalf("movements = %d, want 4", len(env.movements.movements))
	}
	var ins int
	for _, m := range env.movements.movements {
		if m.Type != types.MovementIn {
			continue
		}
		ins++
		if m.Reason != stock.ReasonSaleReversal {
			t.Errorf("in movement reason = %q, want %q", m.Reason, stock.ReasonSaleReversal)
		}
		if m.RelatedSaleID == nil || *m.RelatedSaleID != sale.ID {
			t.Error("compensating movement not linked to the sale")
		}
		if m.QtyChange <= 0 {
			t.Errorf("compensating movement qty = %d, want positive", m.QtyChange)
		}
	}
	if ins != 2 {
		t.Errorf("in movements = %d, want 2", ins)
	}

	// Ledger and stock agree after the round trip.
	sum, _ := env.movements.SumDeltas(context.Background(), soda.ID)
	if sum != 0 {
		t.Errorf("net ledger delta for soda = %d, want 0", sum)
	}
}

func TestReverseSale_SecondReversalRejected(t *testing.T) {
	p := pieceProduct("Soda", 10, "1.20")
	env := newTestEnv(p)

	sale := checkout(t, env, id.New(),
		CheckoutLine{ProductID: p.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 2},
	)

	admin := id.New()
	if _, err := env.coordinator.ReverseSale(context.Background(), sale.ID, admin); err != nil {
		t.Fatalf("first reversal failed: %v", err)
	}

	_, err := env.coordinator.ReverseSale(context.Background(), sale.ID, admin)
	requireCode(t, err, apperror.CodeSaleAlreadyDeleted)

	// Stock restored exactly once.
	if got := stockOf(t, env, p.ID); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
}

func TestReverseSale_SkipsVanishedProduct(t *testing.T) {
	soda := pieceProduct("Soda", 10, "1.20")
	chips := pieceProduct("Chips", 20, "2.00")
	env := newTestEnv(soda, chips)

	sale := checkout(t, env, id.New(),
		CheckoutLine{ProductID: soda.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 3},
		CheckoutLine{ProductID: chips.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 5},
	)

	// Chips is deleted from the catalog between sale and reversal.
	if err := env.products.Delete(context.Background(), chips.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	reversed, err := env.coordinator.ReverseSale(context.Background(), sale.ID, id.New())
	if err != nil {
		t.Fatalf("ReverseSale failed: %v", err)
	}
	if !reversed.IsDeleted() {
		t.Error("sale not marked deleted")
	}

	if got := stockOf(t, env, soda.ID); got != 10 {
		t.Errorf("soda stock = %d, want 10 (restored)", got)
	}

	// Only the surviving product gets a compensating movement.
	var ins int
	for _, m := range env.movements.movements {
		if m.Type == types.MovementIn {
			ins++
			if m.ProductID != soda.ID {
				t.Errorf("unexpected compensating movement for product %s", m.ProductID)
			}
		}
	}
	if ins != 1 {
		t.Errorf("in movements = %d, want 1", ins)
	}
}

func TestReverseSale_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.coordinator.ReverseSale(context.Background(), id.New(), id.New())
	requireCode(t, err, apperror.CodeNotFound)
}

// --- lock ordering ---

func TestCanonicalLockOrder(t *testing.T) {
	a := id.MustParse("00000000-0000-0000-0000-00000000000a")
	b := id.MustParse("00000000-0000-0000-0000-00000000000b")
	c := id.MustParse("00000000-0000-0000-0000-00000000000c")

	got := canonicalLockOrder([]id.ID{c, a, b, a, c})

	want := []id.ID{a, b, c}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCheckout_LocksInCanonicalOrder(t *testing.T) {
	a := pieceProduct("A", 10, "1.00")
	b := pieceProduct("B", 10, "1.00")
	env := newTestEnv(a, b)

	// Request in both orders; locks must be acquired identically.
	checkout(t, env, id.New(),
		CheckoutLine{ProductID: b.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
		CheckoutLine{ProductID: a.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
	)
	first := append([]id.ID(nil), env.products.lockOrder...)
	env.products.lockOrder = nil

	checkout(t, env, id.New(),
		CheckoutLine{ProductID: a.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
		CheckoutLine{ProductID: b.ID, SaleMode: types.SaleModeUnit, QtyBaseUnit: 1},
	)
	second := env.products.lockOrder

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("lock order lengths = %d, %d, want 2, 2", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("lock order differs at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

// --- model ---

func TestSale_ValidateRejectsTotalMismatch(t *testing.T) {
	sale := &Sale{
		Lines: []SaleLine{
			{ProductID: id.New(), SaleMode: types.SaleModeUnit, QtyBaseUnit: 2, LineTotal: types.MustMoney("2.40")},
		},
		Total:       types.MustMoney("9.99"),
		AmountGiven: types.MustMoney("9.99"),
		Payment:     PaymentCash,
		CashierID:   id.New(),
	}
	sale.ID = id.New()

	err := sale.Validate(context.Background())
	requireCode(t, err, apperror.CodeValidation)
}

func TestSale_MarkDeleted(t *testing.T) {
	sale := &Sale{}
	sale.ID = id.New()
	user := id.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := sale.MarkDeleted(user, at); err != nil {
		t.Fatalf("MarkDeleted failed: %v", err)
	}
	if sale.DeletedAt == nil || !sale.DeletedAt.Equal(at) {
		t.Error("DeletedAt not recorded")
	}

	err := sale.MarkDeleted(user, at.Add(time.Hour))
	requireCode(t, err, apperror.CodeSaleAlreadyDeleted)
}
