// Package product provides the product catalog: the sole owner of
// per-product stock quantities and their derived monetary value.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"posrail/internal/core/apperror"
	"posrail/internal/core/entity"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
)

// DefaultCupWeightGrams is used when a cup-mode product does not specify
// its own cup weight.
const DefaultCupWeightGrams types.BaseQty = 1800

// DefaultMinAlertStock is the low-stock threshold applied when none is given.
const DefaultMinAlertStock types.BaseQty = 10

// Product represents a catalog item with its current stock level.
//
// StockBaseUnit is the source of truth for current stock; TotalStockValue is
// derived from it and CostPrice and must never be written independently.
type Product struct {
	entity.Base

	Name       string  `db:"name" json:"name"`
	Barcode    *string `db:"barcode" json:"barcode,omitempty"`
	CategoryID id.ID   `db:"category_id" json:"categoryId"`

	// SaleModes lists how the product may be sold at the register.
	SaleModes []types.SaleMode `db:"-" json:"saleModes"`

	// UnitKind is the base unit stock is tracked in (pieces or grams).
	UnitKind types.UnitKind `db:"unit_kind" json:"unitKind"`

	// StockBaseUnit is the current stock quantity in base units. Never negative.
	StockBaseUnit types.BaseQty `db:"stock_base_unit" json:"stockBaseUnit"`

	// MinAlertStock is the low-stock alert threshold in base units.
	MinAlertStock types.BaseQty `db:"min_alert_stock" json:"minAlertStock"`

	// Per-mode prices. Only the prices for supported modes are meaningful.
	PricePerUnit types.Money `db:"price_per_unit" json:"pricePerUnit"`
	PricePerKg   types.Money `db:"price_per_kg" json:"pricePerKg"`
	PricePerCup  types.Money `db:"price_per_cup" json:"pricePerCup"`

	// CupWeightGrams is the gram weight of one cup for cup-mode products.
	CupWeightGrams types.BaseQty `db:"cup_weight_grams" json:"cupWeightGrams"`

	// CostPrice is the purchase cost per displayed unit
	// (per kilogram for gram-based products, per piece otherwise).
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// TotalStockValue = StockValue(StockBaseUnit, UnitKind, CostPrice). Derived.
	TotalStockValue types.Money `db:"total_stock_value" json:"totalStockValue"`
}

// New creates a product with defaults applied and derived value computed.
func New(name string, categoryID id.ID, unitKind types.UnitKind, saleModes []types.SaleMode, costPrice types.Money) *Product {
	p := &Product{
		Base:           entity.NewBase(),
		Name:           name,
		CategoryID:     categoryID,
		SaleModes:      saleModes,
		UnitKind:       unitKind,
		MinAlertStock:  DefaultMinAlertStock,
		PricePerUnit:   decimal.Zero,
		PricePerKg:     decimal.Zero,
		PricePerCup:    decimal.Zero,
		CupWeightGrams: DefaultCupWeightGrams,
		CostPrice:      costPrice,
		TotalStockValue: decimal.Zero,
	}
	p.RecalculateStockValue()
	return p
}

// StockValue computes the monetary value of a stock quantity.
//
// This is the single derivation formula: gram-based products carry cost price
// per kilogram while stock is tracked in grams, so the quantity is converted;
// discrete products multiply directly. Every write path that changes stock or
// cost price must go through RecalculateStockValue so the stored value can
// never go stale.
func StockValue(qty types.BaseQty, unitKind types.UnitKind, costPrice types.Money) types.Money {
	if unitKind == types.UnitGrams {
		kg := qty.Decimal().Div(decimal.NewFromInt(types.GramsPerKilogram))
		return kg.Mul(costPrice)
	}
	return qty.Decimal().Mul(costPrice)
}

// RecalculateStockValue refreshes the derived TotalStockValue field.
func (p *Product) RecalculateStockValue() {
	p.TotalStockValue = StockValue(p.StockBaseUnit, p.UnitKind, p.CostPrice)
}

// ApplyStockDelta mutates the stock level by a signed base-unit delta.
//
// It is the only sanctioned way to change StockBaseUnit: it enforces the
// non-negative invariant and recomputes the derived value in one step.
func (p *Product) ApplyStockDelta(delta types.BaseQty) error {
	next := p.StockBaseUnit + delta
	if next < 0 {
		return apperror.NewInsufficientStock(p.ID.String(), delta.Abs().Int64(), p.StockBaseUnit.Int64())
	}
	p.StockBaseUnit = next
	p.RecalculateStockValue()
	return nil
}

// SupportsMode reports whether the product can be sold in the given mode.
func (p *Product) SupportsMode(mode types.SaleMode) bool {
	for _, m := range p.SaleModes {
		if m == mode {
			return true
		}
	}
	return false
}

// PriceFor computes the price of a base-unit quantity sold in the given mode.
func (p *Product) PriceFor(mode types.SaleMode, qty types.BaseQty) types.Money {
	switch mode {
	case types.SaleModeUnit:
		return qty.Decimal().Mul(p.PricePerUnit)
	case types.SaleModeWeight:
		kg := qty.Decimal().Div(decimal.NewFromInt(types.GramsPerKilogram))
		return kg.Mul(p.PricePerKg)
	case types.SaleModeCup:
		if p.CupWeightGrams <= 0 {
			return decimal.Zero
		}
		cups := qty.Decimal().Div(p.CupWeightGrams.Decimal())
		return cups.Mul(p.PricePerCup)
	}
	return decimal.Zero
}

// Validate implements entity self-validation.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("product name is required").
			WithDetail("field", "name")
	}

	if id.IsNil(p.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}

	if !p.UnitKind.Valid() {
		return apperror.NewValidation("invalid unit kind").
			WithDetail("field", "unitKind").
			WithDetail("value", string(p.UnitKind))
	}

	if len(p.SaleModes) == 0 {
		return apperror.NewValidation("at least one sale mode is required").
			WithDetail("field", "saleModes")
	}
	for _, m := range p.SaleModes {
		if !m.Valid() {
			return apperror.NewValidation("invalid sale mode").
				WithDetail("field", "saleModes").
				WithDetail("value", string(m))
		}
	}

	// Weight and cup modes only make sense for gram-tracked products.
	if p.UnitKind == types.UnitPieces && (p.SupportsMode(types.SaleModeWeight) || p.SupportsMode(types.SaleModeCup)) {
		return apperror.NewValidation("weight and cup modes require gram-based stock").
			WithDetail("field", "saleModes")
	}

	if p.StockBaseUnit < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stockBaseUnit")
	}

	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}

	if p.PricePerUnit.IsNegative() || p.PricePerKg.IsNegative() || p.PricePerCup.IsNegative() {
		return apperror.NewValidation("prices cannot be negative")
	}

	if p.SupportsMode(types.SaleModeCup) && p.CupWeightGrams <= 0 {
		return apperror.NewValidation("cup weight must be positive for cup-mode products").
			WithDetail("field", "cupWeightGrams")
	}

	return nil
}
