package bom

import (
	"testing"

	"github.com/shopspring/decimal"
)

func line(id int64, cost string) Line {
	return Line{MaterialID: id, ItemCost: decimal.RequireFromString(cost)}
}

func TestAllocateShippingProportional(t *testing.T) {
	lines := []Line{line(1, "20"), line(2, "5"), line(3, "0")}
	out := AllocateShipping(lines, decimal.NewFromInt(10))

	want := []string{"8", "2", "0"}
	sum := decimal.Zero
	for i, l := range out {
		if !l.ShippingCost.Valid {
			t.Fatalf("line %d has no shipping allocation", i)
		}
		if !l.ShippingCost.Decimal.Equal(decimal.RequireFromString(want[i])) {
			t.Errorf("line %d shipping = %s, want %s", i, l.ShippingCost.Decimal, want[i])
		}
		if !l.TotalWithShipping.Decimal.Equal(l.ItemCost.Add(l.ShippingCost.Decimal)) {
			t.Errorf("line %d total with shipping = %s", i, l.TotalWithShipping.Decimal)
		}
		sum = sum.Add(l.ShippingCost.Decimal)
	}
	if !sum.Equal(decimal.NewFromInt(10)) {
		t.Errorf("allocated sum = %s, want 10", sum)
	}
	if got := TotalWithShipping(out); !got.Equal(decimal.NewFromInt(35)) {
		t.Errorf("TotalWithShipping = %s, want 35", got)
	}
	if lines[0].ShippingCost.Valid {
		t.Error("input lines were modified")
	}
}

func TestAllocateShippingSumWithinTolerance(t *testing.T) {
	lines := []Line{line(1, "1"), line(2, "1"), line(3, "1")}
	out := AllocateShipping(lines, decimal.NewFromInt(10))

	sum := decimal.Zero
	for _, l := range out {
		sum = sum.Add(l.ShippingCost.Decimal)
	}
	if diff := sum.Sub(decimal.NewFromInt(10)).Abs(); diff.GreaterThan(decimal.RequireFromString("0.000001")) {
		t.Errorf("allocated sum = %s, off by %s", sum, diff)
	}
}

func TestAllocateShippingZeroCost(t *testing.T) {
	lines := []Line{line(1, "0"), line(2, "0")}
	out := AllocateShipping(lines, decimal.NewFromInt(10))
	for i, l := range out {
		if l.ShippingCost.Valid || l.TotalWithShipping.Valid {
			t.Errorf("line %d got an allocation with zero material cost", i)
		}
	}
	if got := TotalWithShipping(out); !got.IsZero() {
		t.Errorf("TotalWithShipping = %s, want 0", got)
	}
	if got := AllocateShipping(nil, decimal.NewFromInt(3)); len(got) != 0 {
		t.Errorf("AllocateShipping(nil) = %v", got)
	}
}
