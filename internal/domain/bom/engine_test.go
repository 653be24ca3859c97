package bom_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/bom/bomtest"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func byMaterial(lines []bom.Line) map[int64]bom.Line {
	out := make(map[int64]bom.Line, len(lines))
	for _, l := range lines {
		out[l.MaterialID] = l
	}
	return out
}

// P1 -> M1 (2 kg), M2 (1 个), S1 (1); S1 -> M1 (3 g).
func pinnedStore() *bomtest.Store {
	s := bomtest.New()
	s.AddProduct(1, "P1", "个", "0", "0")
	s.AddProduct(10, "M1", "kg", "10", "50")
	s.AddProduct(11, "M2", "个", "5", "7")
	s.AddProduct(20, "S1", "个", "0", "0")
	s.AddEdge(1, 10, "2", "kg")
	s.AddEdge(1, 11, "1", "个")
	s.AddEdge(1, 20, "1", "个")
	s.AddEdge(20, 10, "3", "g")
	return s
}

func TestDirectCosts(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "P1", "个", "0", "0")
	s.AddProduct(10, "M1", "kg", "10", "50")
	s.AddProduct(11, "M2", "个", "5", "7")
	s.AddEdge(1, 10, "2", "kg")
	s.AddEdge(1, 11, "1", "个")

	e := bom.NewEngine(s, s, quietLogger())
	lines, err := e.Direct(context.Background(), 1)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if got := bom.TotalCost(lines); !got.Equal(dec("25")) {
		t.Errorf("total cost = %s, want 25", got)
	}
	m1 := byMaterial(lines)[10]
	if m1.MaterialName != "M1" || m1.MaterialSKU != "SKU-M1" || !m1.CurrentStock.Equal(dec("50")) {
		t.Errorf("unexpected M1 line: %+v", m1)
	}
}

func TestDirectConvertsEdgeUnit(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "P", "个", "0", "0")
	s.AddProduct(2, "Flour", "kg", "4", "0")
	s.AddEdge(1, 2, "250", "g")

	lines, err := bom.NewEngine(s, s, quietLogger()).Direct(context.Background(), 1)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	l := lines[0]
	if !l.UnitPrice.Equal(dec("0.004")) {
		t.Errorf("unit price = %s, want 0.004", l.UnitPrice)
	}
	if !l.ItemCost.Equal(dec("1")) {
		t.Errorf("item cost = %s, want 1", l.ItemCost)
	}
	if l.Unit != "g" || l.MaterialUnit != "kg" {
		t.Errorf("units = %q/%q, want g/kg", l.Unit, l.MaterialUnit)
	}
}

func TestDirectEmptyEdgeUnitFallsBackToMaterialUnit(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "P", "个", "0", "0")
	s.AddProduct(2, "Oil", "l", "3", "0")
	s.AddEdge(1, 2, "2", "")

	lines, err := bom.NewEngine(s, s, quietLogger()).Direct(context.Background(), 1)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	if lines[0].Unit != "l" || !lines[0].ItemCost.Equal(dec("6")) {
		t.Errorf("line = %+v, want unit l and cost 6", lines[0])
	}
}

func TestNoEdges(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "Lonely", "个", "3", "1")
	e := bom.NewEngine(s, s, quietLogger())

	direct, err := e.Direct(context.Background(), 1)
	if err != nil || len(direct) != 0 {
		t.Fatalf("Direct = %v, %v; want empty", direct, err)
	}
	expanded, err := e.Expand(context.Background(), 1)
	if err != nil || len(expanded) != 0 {
		t.Fatalf("Expand = %v, %v; want empty", expanded, err)
	}
}

func TestExpandAggregatesAcrossPaths(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "R", "个", "0", "0")
	s.AddProduct(2, "M", "个", "2", "0")
	s.AddProduct(3, "S", "个", "0", "0")
	s.AddEdge(1, 2, "2", "个")
	s.AddEdge(1, 3, "3", "个")
	s.AddEdge(3, 2, "1", "个")

	lines, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1: %+v", len(lines), lines)
	}
	if !lines[0].Quantity.Equal(dec("5")) {
		t.Errorf("quantity = %s, want 5", lines[0].Quantity)
	}
	if !lines[0].ItemCost.Equal(dec("10")) {
		t.Errorf("item cost = %s, want 10", lines[0].ItemCost)
	}
}

func TestExpandMultiLevelChainRule(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "Table", "个", "0", "0")
	s.AddProduct(2, "Leg", "个", "0", "0")
	s.AddProduct(3, "Screw", "个", "0.1", "100")
	s.AddProduct(4, "Wood", "kg", "2", "30")
	s.AddProduct(5, "Top", "个", "0", "0")
	s.AddEdge(1, 2, "4", "个")
	s.AddEdge(1, 5, "1", "个")
	s.AddEdge(2, 3, "2", "个")
	s.AddEdge(2, 4, "500", "g")
	s.AddEdge(5, 3, "8", "个")
	s.AddEdge(5, 4, "6", "kg")

	lines, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := byMaterial(lines)
	if len(got) != 2 {
		t.Fatalf("want 2 distinct materials, got %+v", lines)
	}
	// 4 legs * 2 screws + 8 screws on the top.
	if q := got[3].Quantity; !q.Equal(dec("16")) {
		t.Errorf("screws = %s, want 16", q)
	}
	// first seen via the legs in grams: 4*500 g + 6 kg = 8000 g.
	wood := got[4]
	if wood.Unit != "g" || !wood.Quantity.Equal(dec("8000")) {
		t.Errorf("wood = %s %s, want 8000 g", wood.Quantity, wood.Unit)
	}
	if !wood.ItemCost.Equal(dec("16")) {
		t.Errorf("wood cost = %s, want 16", wood.ItemCost)
	}
	if total := bom.TotalCost(lines); !total.Equal(dec("17.6")) {
		t.Errorf("total = %s, want 17.6", total)
	}
}

func TestExpandPinnedMergeUnit(t *testing.T) {
	s := pinnedStore()
	e := bom.NewEngine(s, s, quietLogger())

	direct, err := e.Direct(context.Background(), 1)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	leafCost := decimal.Zero
	for _, l := range direct {
		if l.MaterialID != 20 {
			leafCost = leafCost.Add(l.ItemCost)
		}
	}
	if !leafCost.Equal(dec("25")) {
		t.Errorf("direct material cost = %s, want 25", leafCost)
	}

	lines, err := e.Expand(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := byMaterial(lines)
	if len(got) != 2 {
		t.Fatalf("want M1 and M2 only, got %+v", lines)
	}
	m1 := got[10]
	if m1.Unit != "kg" {
		t.Errorf("M1 unit = %q, want first occurrence unit kg", m1.Unit)
	}
	if !m1.Quantity.Equal(dec("2.003")) {
		t.Errorf("M1 quantity = %s, want 2.003", m1.Quantity)
	}
	if !m1.UnitPrice.Equal(dec("10")) || !m1.ItemCost.Equal(dec("20.03")) {
		t.Errorf("M1 price/cost = %s/%s, want 10/20.03", m1.UnitPrice, m1.ItemCost)
	}
	if lines[0].MaterialID != 10 || lines[1].MaterialID != 11 {
		t.Errorf("lines not in first occurrence order: %d, %d", lines[0].MaterialID, lines[1].MaterialID)
	}
}

func TestExpandBreaksCycles(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "A", "个", "0", "0")
	s.AddProduct(2, "B", "个", "0", "0")
	s.AddProduct(3, "Leaf", "个", "1", "0")
	s.AddEdge(1, 2, "1", "个")
	s.AddEdge(2, 1, "1", "个")
	s.AddEdge(2, 3, "2", "个")

	lines, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := byMaterial(lines)
	if len(got) != 1 || !got[3].Quantity.Equal(dec("2")) {
		t.Errorf("cyclic expansion = %+v, want only Leaf x2", lines)
	}
}

func TestExpandSelfLoop(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "A", "个", "0", "0")
	s.AddEdge(1, 1, "1", "个")

	lines, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("self loop expansion = %+v, want empty", lines)
	}
}

func TestExpandSiblingsDoNotSuppressEachOther(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "Root", "个", "0", "0")
	s.AddProduct(2, "Left", "个", "0", "0")
	s.AddProduct(3, "Right", "个", "0", "0")
	s.AddProduct(4, "Shared", "个", "0", "0")
	s.AddProduct(5, "Bolt", "个", "1", "0")
	s.AddEdge(1, 2, "1", "个")
	s.AddEdge(1, 3, "1", "个")
	s.AddEdge(2, 4, "1", "个")
	s.AddEdge(3, 4, "2", "个")
	s.AddEdge(4, 5, "5", "个")

	lines, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(lines) != 1 || !lines[0].Quantity.Equal(dec("15")) {
		t.Errorf("shared sub-assembly expansion = %+v, want Bolt x15", lines)
	}
}

func TestMissingMaterialYieldsZeroLine(t *testing.T) {
	s := bomtest.New()
	s.AddProduct(1, "P", "个", "0", "0")
	s.AddProduct(2, "Known", "个", "3", "1")
	s.AddEdge(1, 2, "1", "个")
	s.AddEdge(1, 99, "4", "")

	lines, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	ghost, ok := byMaterial(lines)[99]
	if !ok {
		t.Fatalf("missing material line dropped: %+v", lines)
	}
	if !ghost.UnitPrice.IsZero() || !ghost.CurrentStock.IsZero() || !ghost.ItemCost.IsZero() {
		t.Errorf("missing material line = %+v, want zero price/stock/cost", ghost)
	}
	if !ghost.Quantity.Equal(dec("4")) {
		t.Errorf("missing material quantity = %s, want 4", ghost.Quantity)
	}
	if total := bom.TotalCost(lines); !total.Equal(dec("3")) {
		t.Errorf("total = %s, want 3", total)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	s := bomtest.New()
	boom := errors.New("connection reset")
	s.FailEdges = boom

	_, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestExpandListsEdgesOncePerOccurrence(t *testing.T) {
	s := pinnedStore()

	if _, err := bom.NewEngine(s, s, quietLogger()).Expand(context.Background(), 1); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// M1 occurs under P1 and under S1.
	want := map[int64]int{1: 1, 10: 2, 11: 1, 20: 1}
	for id, n := range want {
		if got := s.EdgeLists(id); got != n {
			t.Errorf("edges of product %d listed %d times, want %d", id, got, n)
		}
	}
}
