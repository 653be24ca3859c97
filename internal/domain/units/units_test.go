package units

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvertPrice(t *testing.T) {
	tests := []struct {
		name   string
		price  string
		from   string
		to     string
		expect string
	}{
		{"kg to g", "10", "kg", "g", "0.01"},
		{"g to kg", "0.01", "g", "kg", "10"},
		{"case insensitive", "10", "KG", "g", "0.01"},
		{"l to ml", "4", "L", "ml", "0.004"},
		{"mg to g", "2", "mg", "g", "2000"},
		{"same unit", "7.5", "个", "个", "7.5"},
		{"count units", "5", "个", "箱", "5"},
		{"unknown units", "12", "bottle", "crate", "12"},
		{"one unknown", "12", "kg", "crate", "12"},
		{"cross family", "10", "kg", "个", "10"},
		{"mass to volume", "10", "kg", "l", "10"},
		{"zero price", "0", "kg", "g", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertPrice(dec(tt.price), tt.from, tt.to)
			if !got.Equal(dec(tt.expect)) {
				t.Errorf("ConvertPrice(%s, %q, %q) = %s, want %s", tt.price, tt.from, tt.to, got, tt.expect)
			}
		})
	}
}

func TestConvertPriceRoundTrip(t *testing.T) {
	tolerance := dec("0.0000000001")
	for _, p := range []string{"10", "3.3333", "0.07", "1234.5678"} {
		orig := dec(p)
		back := ConvertPrice(ConvertPrice(orig, "kg", "g"), "g", "kg")
		if back.Sub(orig).Abs().GreaterThan(tolerance) {
			t.Errorf("round trip of %s = %s", orig, back)
		}
	}
}

func TestConvertQuantity(t *testing.T) {
	if got := ConvertQuantity(dec("3"), "g", "kg"); !got.Equal(dec("0.003")) {
		t.Errorf("3 g in kg = %s, want 0.003", got)
	}
	if got := ConvertQuantity(dec("1.5"), "l", "ml"); !got.Equal(dec("1500")) {
		t.Errorf("1.5 l in ml = %s, want 1500", got)
	}
	if got := ConvertQuantity(dec("3"), "g", "个"); !got.Equal(dec("3")) {
		t.Errorf("cross family conversion changed quantity: %s", got)
	}
}

func TestConvertible(t *testing.T) {
	if !Convertible("kg", "G") {
		t.Error("kg and g should be convertible")
	}
	if Convertible("kg", "ml") {
		t.Error("kg and ml should not be convertible")
	}
	if !Convertible("bottle", "Bottle") {
		t.Error("identical unknown units should be convertible")
	}
	if Convertible("bottle", "g") {
		t.Error("unknown unit should not be convertible")
	}
	if FamilyOf("m³") != FamilyVolume {
		t.Errorf("FamilyOf(m³) = %q", FamilyOf("m³"))
	}
}

func TestRoundQuantity(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0.000005", "0.000005"},
		{"0.0000005", "0.000001"},
		{"1.2345671", "1.234568"},
		{"2", "2"},
		{"0", "0"},
	}
	for _, tc := range cases {
		if got := RoundQuantity(dec(tc.in)); !got.Equal(dec(tc.want)) {
			t.Errorf("RoundQuantity(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}

	// 5 mg in kg comes out of a 16-place division.
	got := RoundQuantity(ConvertQuantity(dec("5"), Mg, Kg))
	if got.Exponent() < -Scale {
		t.Errorf("exponent = %d, want >= %d", got.Exponent(), -Scale)
	}
}
