package bom

import "github.com/shopspring/decimal"

// AllocateShipping spreads a lump shipping cost across lines in proportion to
// their item cost. When the material cost is not positive there is nothing to
// allocate against and the lines are returned as they are.
func AllocateShipping(lines []Line, shippingCost decimal.Decimal) []Line {
	total := TotalCost(lines)
	if !total.IsPositive() {
		return lines
	}

	ratio := shippingCost.Div(total)
	out := make([]Line, len(lines))
	for i, l := range lines {
		share := l.ItemCost.Mul(ratio)
		l.ShippingCost = decimal.NewNullDecimal(share)
		l.TotalWithShipping = decimal.NewNullDecimal(l.ItemCost.Add(share))
		out[i] = l
	}
	return out
}

// TotalWithShipping sums total_cost_with_shipping, falling back to item cost
// for lines that carry no allocation.
func TotalWithShipping(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.TotalWithShipping.Valid {
			total = total.Add(l.TotalWithShipping.Decimal)
			continue
		}
		total = total.Add(l.ItemCost)
	}
	return total
}
