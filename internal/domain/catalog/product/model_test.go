package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
)

func TestStockValue(t *testing.T) {
	tests := []struct {
		name      string
		qty       types.BaseQty
		unitKind  types.UnitKind
		costPrice string
		want      string
	}{
		{"pieces multiply directly", 12, types.UnitPieces, "0.60", "7.2"},
		{"grams convert to kilograms", 2500, types.UnitGrams, "4.00", "10"},
		{"sub-kilogram remainder keeps precision", 750, types.UnitGrams, "3.00", "2.25"},
		{"zero stock is zero value", 0, types.UnitGrams, "4.00", "0"},
		{"zero cost is zero value", 500, types.UnitPieces, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StockValue(tt.qty, tt.unitKind, types.MustMoney(tt.costPrice))
			assert.True(t, got.Equal(types.MustMoney(tt.want)),
				"StockValue = %s, want %s", got, tt.want)
		})
	}
}

func TestApplyStockDelta(t *testing.T) {
	p := New("Rice", id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight}, types.MustMoney("2.00"))
	p.StockBaseUnit = 1000
	p.RecalculateStockValue()

	err := p.ApplyStockDelta(-400)
	assert.NoError(t, err)
	assert.Equal(t, types.BaseQty(600), p.StockBaseUnit)
	assert.True(t, p.TotalStockValue.Equal(types.MustMoney("1.2")),
		"derived value = %s, want 1.2", p.TotalStockValue)

	err = p.ApplyStockDelta(400)
	assert.NoError(t, err)
	assert.Equal(t, types.BaseQty(1000), p.StockBaseUnit)
}

func TestApplyStockDelta_RejectsNegativeResult(t *testing.T) {
	p := New("Rice", id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight}, types.MustMoney("2.00"))
	p.StockBaseUnit = 100
	p.RecalculateStockValue()

	err := p.ApplyStockDelta(-101)
	assert.True(t, apperror.IsInsufficientStock(err), "expected insufficient stock, got %v", err)

	// Failed delta leaves the product untouched.
	assert.Equal(t, types.BaseQty(100), p.StockBaseUnit)
	assert.True(t, p.TotalStockValue.Equal(StockValue(100, types.UnitGrams, p.CostPrice)))

	// Draining to exactly zero is fine.
	assert.NoError(t, p.ApplyStockDelta(-100))
	assert.Equal(t, types.BaseQty(0), p.StockBaseUnit)
	assert.True(t, p.TotalStockValue.IsZero())
}

func TestPriceFor(t *testing.T) {
	p := New("Rice", id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight, types.SaleModeCup}, types.MustMoney("2.00"))
	p.PricePerKg = types.MustMoney("4.00")
	p.PricePerCup = types.MustMoney("7.00")
	p.CupWeightGrams = 1800

	// 2.5 kg at 4.00/kg
	assert.True(t, p.PriceFor(types.SaleModeWeight, 2500).Equal(types.MustMoney("10")))
	// 2 cups of 1800g at 7.00/cup
	assert.True(t, p.PriceFor(types.SaleModeCup, 3600).Equal(types.MustMoney("14")))

	discrete := New("Soda", id.New(), types.UnitPieces,
		[]types.SaleMode{types.SaleModeUnit}, types.MustMoney("0.60"))
	discrete.PricePerUnit = types.MustMoney("1.20")
	assert.True(t, discrete.PriceFor(types.SaleModeUnit, 3).Equal(types.MustMoney("3.6")))
}

func TestNew_AppliesDefaults(t *testing.T) {
	p := New("Rice", id.New(), types.UnitGrams,
		[]types.SaleMode{types.SaleModeCup}, types.MustMoney("2.00"))

	assert.Equal(t, DefaultCupWeightGrams, p.CupWeightGrams)
	assert.Equal(t, DefaultMinAlertStock, p.MinAlertStock)
	assert.True(t, p.TotalStockValue.IsZero())
	assert.False(t, id.IsNil(p.ID))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	valid := func() *Product {
		p := New("Rice", id.New(), types.UnitGrams,
			[]types.SaleMode{types.SaleModeWeight}, types.MustMoney("2.00"))
		p.PricePerKg = types.MustMoney("4.00")
		return p
	}

	assert.NoError(t, valid().Validate(ctx))

	t.Run("name required", func(t *testing.T) {
		p := valid()
		p.Name = ""
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("category required", func(t *testing.T) {
		p := valid()
		p.CategoryID = id.Nil()
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("at least one sale mode", func(t *testing.T) {
		p := valid()
		p.SaleModes = nil
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("weight mode needs gram stock", func(t *testing.T) {
		p := valid()
		p.UnitKind = types.UnitPieces
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("negative cost price", func(t *testing.T) {
		p := valid()
		p.CostPrice = types.MustMoney("-1")
		assert.Error(t, p.Validate(ctx))
	})

	t.Run("cup mode needs cup weight", func(t *testing.T) {
		p := valid()
		p.SaleModes = []types.SaleMode{types.SaleModeCup}
		p.CupWeightGrams = 0
		assert.Error(t, p.Validate(ctx))
	})
}
