// Package types provides common domain types shared across packages.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// BaseQty is a stock quantity in the product's base unit.
//
// All stock arithmetic happens in base units (whole pieces or whole grams)
// to avoid unit-conversion drift; base quantities are therefore integral.
type BaseQty int64

func (q BaseQty) IsZero() bool     { return q == 0 }
func (q BaseQty) IsPositive() bool { return q > 0 }
func (q BaseQty) IsNegative() bool { return q < 0 }
func (q BaseQty) Neg() BaseQty     { return -q }

func (q BaseQty) Abs() BaseQty {
	if q < 0 {
		return -q
	}
	return q
}

// Int64 returns the raw base-unit count.
func (q BaseQty) Int64() int64 { return int64(q) }

// Decimal returns the quantity as a decimal for monetary arithmetic.
func (q BaseQty) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(q)) }

// UnitKind is the base unit a product's stock is tracked in.
type UnitKind string

const (
	// UnitPieces - discrete items counted one by one
	UnitPieces UnitKind = "pieces"
	// UnitGrams - mass-based items tracked in grams
	UnitGrams UnitKind = "grams"
)

// Valid reports whether the unit kind is one of the known kinds.
func (u UnitKind) Valid() bool {
	return u == UnitPieces || u == UnitGrams
}

// SaleMode is a way a product can be sold at the register.
type SaleMode string

const (
	// SaleModeUnit - priced per piece
	SaleModeUnit SaleMode = "unit"
	// SaleModeWeight - priced per kilogram, quantity entered by weight
	SaleModeWeight SaleMode = "weight"
	// SaleModeCup - priced per cup of a fixed gram weight
	SaleModeCup SaleMode = "cup"
)

// Valid reports whether the sale mode is one of the known modes.
func (m SaleMode) Valid() bool {
	return m == SaleModeUnit || m == SaleModeWeight || m == SaleModeCup
}

// MovementType is the reason class of a stock movement.
type MovementType string

const (
	// MovementIn increases stock (receipt, sale reversal)
	MovementIn MovementType = "in"
	// MovementOut decreases stock (sale, spoilage)
	MovementOut MovementType = "out"
	// MovementAdjustment corrects stock in either direction
	MovementAdjustment MovementType = "adjustment"
)

// Valid reports whether the movement type is one of the known types.
func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut || t == MovementAdjustment
}

// GramsPerKilogram converts between the stored base unit (grams) and the
// displayed pricing unit (kilograms) for mass-based products.
const GramsPerKilogram int64 = 1000
