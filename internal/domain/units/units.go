package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Family string

const (
	FamilyMass   Family = "mass"   // base: g
	FamilyVolume Family = "volume" // base: ml
	FamilyCount  Family = "count"
)

const (
	Piece   = "个"
	Kg      = "kg"
	G       = "g"
	Mg      = "mg"
	L       = "l"
	Ml      = "ml"
	Default = Piece
)

// Scale is the number of decimal places stored for quantities and prices.
const Scale = 6

// RoundQuantity rounds a quantity away from zero to Scale places so that a
// positive amount never stores as zero.
func RoundQuantity(qty decimal.Decimal) decimal.Decimal {
	// RoundUp keeps an exactly representable value at its original exponent.
	return qty.RoundUp(Scale).Truncate(Scale)
}

type factor struct {
	family Family
	toBase decimal.Decimal
}

var table = map[string]factor{
	Kg: {FamilyMass, decimal.NewFromInt(1000)},
	G:  {FamilyMass, decimal.NewFromInt(1)},
	Mg: {FamilyMass, decimal.New(1, -3)},

	L:    {FamilyVolume, decimal.NewFromInt(1000)},
	Ml:   {FamilyVolume, decimal.NewFromInt(1)},
	"m³": {FamilyVolume, decimal.NewFromInt(1_000_000)},

	Piece: {FamilyCount, decimal.NewFromInt(1)},
	"件":   {FamilyCount, decimal.NewFromInt(1)},
	"套":   {FamilyCount, decimal.NewFromInt(1)},
	"箱":   {FamilyCount, decimal.NewFromInt(1)},
	"包":   {FamilyCount, decimal.NewFromInt(1)},
	"pcs": {FamilyCount, decimal.NewFromInt(1)},
}

func lookup(unit string) (factor, bool) {
	f, ok := table[strings.ToLower(strings.TrimSpace(unit))]
	return f, ok
}

// FamilyOf returns the unit family, or "" for units outside the table.
func FamilyOf(unit string) Family {
	f, ok := lookup(unit)
	if !ok {
		return ""
	}
	return f.family
}

// Same compares unit symbols case-insensitively.
func Same(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Convertible reports whether a value expressed in unit a can be rescaled to unit b.
func Convertible(a, b string) bool {
	if Same(a, b) {
		return true
	}
	fa, okA := lookup(a)
	fb, okB := lookup(b)
	return okA && okB && fa.family == fb.family
}

// ConvertPrice rescales a per-unit price from baseUnit to targetUnit
// (price per kg -> price per g divides by 1000). Units outside the table or
// from different families leave the price unchanged.
func ConvertPrice(price decimal.Decimal, baseUnit, targetUnit string) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	if baseUnit == targetUnit {
		return price
	}
	base, okBase := lookup(baseUnit)
	target, okTarget := lookup(targetUnit)
	if !okBase || !okTarget || base.family != target.family {
		return price
	}
	return price.Div(base.toBase).Mul(target.toBase)
}

// ConvertQuantity rescales a quantity from one unit to another
// (3 g -> 0.003 kg). Same no-op rules as ConvertPrice.
func ConvertQuantity(qty decimal.Decimal, fromUnit, toUnit string) decimal.Decimal {
	if qty.IsZero() || fromUnit == toUnit {
		return qty
	}
	from, okFrom := lookup(fromUnit)
	to, okTo := lookup(toUnit)
	if !okFrom || !okTo || from.family != to.family {
		return qty
	}
	return qty.Mul(from.toBase).Div(to.toBase)
}
