package production_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/bom/bomtest"
	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/production"
	"github.com/Aurora209/inventory-system/internal/domain/units"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakePlans struct {
	plans     map[int64]production.Plan
	completed [][]inventory.NewTransaction
}

func (f *fakePlans) GetByID(_ context.Context, id int64) (*production.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePlans) List(_ context.Context, status production.Status) ([]production.Plan, error) {
	var out []production.Plan
	for _, p := range f.plans {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePlans) Complete(_ context.Context, id int64, moves []inventory.NewTransaction) ([]inventory.Transaction, error) {
	f.completed = append(f.completed, moves)
	out := make([]inventory.Transaction, len(moves))
	for i, m := range moves {
		out[i] = inventory.Transaction{ID: int64(i + 1), ProductID: m.ProductID, Type: m.Type, Quantity: m.Quantity}
	}
	p := f.plans[id]
	p.Status = production.StatusCompleted
	f.plans[id] = p
	return out, nil
}

type recordedAlerts struct{ ids []int64 }

func (r *recordedAlerts) CheckAlerts(_ context.Context, ids ...int64) { r.ids = append(r.ids, ids...) }

func newService(t *testing.T, s *bomtest.Store, plans *fakePlans, alerts production.AlertChecker) *production.Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return production.NewService(plans, bom.NewEngine(s, s, log), alerts, log)
}

func cakeStore() *bomtest.Store {
	s := bomtest.New()
	s.AddProduct(1, "Cake", "个", "0", "0")
	s.AddProduct(2, "Flour", "kg", "4", "10")
	s.AddProduct(3, "Egg", "个", "0.5", "7")
	s.AddEdge(1, 2, "250", "g")
	s.AddEdge(1, 3, "2", "个")
	return s
}

func TestRequirementsScaleAndConvert(t *testing.T) {
	plans := &fakePlans{plans: map[int64]production.Plan{
		7: {ID: 7, ProductID: 1, Quantity: dec("4"), Status: production.StatusPending},
	}}
	svc := newService(t, cakeStore(), plans, nil)

	req, err := svc.Requirements(context.Background(), 7)
	if err != nil {
		t.Fatalf("Requirements: %v", err)
	}
	if len(req.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(req.Items))
	}

	egg, flour := req.Items[0], req.Items[1]
	if flour.Unit != "kg" || !flour.Required.Equal(dec("1")) {
		t.Errorf("flour required = %s %s, want 1 kg", flour.Required, flour.Unit)
	}
	if !flour.UnitPrice.Equal(dec("4")) || !flour.Cost.Equal(dec("4")) {
		t.Errorf("flour price/cost = %s/%s, want 4/4", flour.UnitPrice, flour.Cost)
	}
	if !flour.Shortage.IsZero() {
		t.Errorf("flour shortage = %s, want 0", flour.Shortage)
	}
	if !egg.Required.Equal(dec("8")) || !egg.Shortage.Equal(dec("1")) {
		t.Errorf("egg required/shortage = %s/%s, want 8/1", egg.Required, egg.Shortage)
	}
	if !req.TotalCost.Equal(dec("8")) {
		t.Errorf("TotalCost = %s, want 8", req.TotalCost)
	}
	if !req.HasShortage() {
		t.Error("HasShortage() = false, want true")
	}
}

func TestRequirementsUnknownPlan(t *testing.T) {
	svc := newService(t, cakeStore(), &fakePlans{plans: map[int64]production.Plan{}}, nil)
	if _, err := svc.Requirements(context.Background(), 1); !errors.Is(err, production.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCompleteRefusedOnShortage(t *testing.T) {
	plans := &fakePlans{plans: map[int64]production.Plan{
		7: {ID: 7, ProductID: 1, Quantity: dec("4"), Status: production.StatusPending},
	}}
	svc := newService(t, cakeStore(), plans, nil)

	if _, err := svc.Complete(context.Background(), 7); !errors.Is(err, production.ErrShortage) {
		t.Fatalf("err = %v, want ErrShortage", err)
	}
	if len(plans.completed) != 0 {
		t.Error("nothing must be written on shortage")
	}
}

func TestCompleteConsumesAndReceives(t *testing.T) {
	plans := &fakePlans{plans: map[int64]production.Plan{
		7: {ID: 7, ProductID: 1, Quantity: dec("2"), Status: production.StatusInProgress},
	}}
	alerts := &recordedAlerts{}
	svc := newService(t, cakeStore(), plans, alerts)

	out, err := svc.Complete(context.Background(), 7)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(out) != 3 || len(plans.completed) != 1 {
		t.Fatalf("transactions = %d, want 3", len(out))
	}

	moves := plans.completed[0]
	if moves[0].ProductID != 3 || moves[0].Type != inventory.MoveOut || !moves[0].Quantity.Equal(dec("4")) {
		t.Errorf("egg move = %+v", moves[0])
	}
	if moves[1].ProductID != 2 || !moves[1].Quantity.Equal(dec("0.5")) || !moves[1].UnitPrice.Equal(dec("4")) {
		t.Errorf("flour move = %+v", moves[1])
	}
	last := moves[2]
	if last.ProductID != 1 || last.Type != inventory.MoveIn || !last.Quantity.Equal(dec("2")) {
		t.Errorf("product receipt = %+v", last)
	}
	// (0.25*4 + 2*0.5) per cake
	if !last.UnitPrice.Equal(dec("2")) {
		t.Errorf("receipt unit price = %s, want 2", last.UnitPrice)
	}
	for _, m := range moves {
		if m.ReferenceNo != "PP-7" {
			t.Errorf("reference = %q, want PP-7", m.ReferenceNo)
		}
	}
	if len(alerts.ids) != 2 {
		t.Errorf("alert check ids = %v, want both materials", alerts.ids)
	}

	if _, err := svc.Complete(context.Background(), 7); !errors.Is(err, production.ErrClosed) {
		t.Errorf("second Complete err = %v, want ErrClosed", err)
	}
}

func TestCompleteMilligramsOfKilogramMaterial(t *testing.T) {
	cases := []struct {
		name, edgeQty, want string
	}{
		{"exact at stored scale", "5", "0.000005"},
		{"below stored scale rounds up", "0.5", "0.000001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := cakeStore()
			s.AddProduct(4, "Saffron", units.Kg, "9000", "1")
			s.AddEdge(1, 4, tc.edgeQty, units.Mg)
			plans := &fakePlans{plans: map[int64]production.Plan{
				7: {ID: 7, ProductID: 1, Quantity: dec("1"), Status: production.StatusPending},
			}}
			svc := newService(t, s, plans, nil)

			req, err := svc.Requirements(context.Background(), 7)
			if err != nil {
				t.Fatalf("Requirements: %v", err)
			}
			var saffron production.Requirement
			for _, it := range req.Items {
				if it.MaterialID == 4 {
					saffron = it
				}
			}
			if units.FamilyOf(saffron.Unit) != units.FamilyMass || saffron.Unit != units.Kg {
				t.Fatalf("saffron unit = %q, want kg", saffron.Unit)
			}
			if !saffron.Required.Equal(dec(tc.want)) {
				t.Errorf("saffron required = %s, want %s", saffron.Required, tc.want)
			}

			if _, err := svc.Complete(context.Background(), 7); err != nil {
				t.Fatalf("Complete: %v", err)
			}
			for _, m := range plans.completed[0] {
				if m.ProductID != 4 {
					continue
				}
				if !m.Quantity.IsPositive() || m.Quantity.Exponent() < -units.Scale {
					t.Errorf("saffron move quantity = %s, want positive with at most %d places", m.Quantity, units.Scale)
				}
				if !m.Quantity.Equal(dec(tc.want)) {
					t.Errorf("saffron move quantity = %s, want %s", m.Quantity, tc.want)
				}
			}
		})
	}
}

func TestCompleteWithoutBOM(t *testing.T) {
	s := cakeStore()
	s.AddProduct(9, "Air", "个", "0", "0")
	plans := &fakePlans{plans: map[int64]production.Plan{
		1: {ID: 1, ProductID: 9, Quantity: dec("1"), Status: production.StatusPending},
	}}
	svc := newService(t, s, plans, nil)
	if _, err := svc.Complete(context.Background(), 1); !errors.Is(err, production.ErrNoBOM) {
		t.Errorf("err = %v, want ErrNoBOM", err)
	}
}

func TestPurchaseListSumsOpenPlans(t *testing.T) {
	s := cakeStore()
	s.AddProduct(5, "Sugar", units.Kg, "2", "0")
	s.AddEdge(1, 5, "500", units.G)
	plans := &fakePlans{plans: map[int64]production.Plan{
		1: {ID: 1, ProductID: 1, Quantity: dec("4"), Status: production.StatusPending},
		2: {ID: 2, ProductID: 1, Quantity: dec("2"), Status: production.StatusInProgress},
		3: {ID: 3, ProductID: 1, Quantity: dec("100"), Status: production.StatusCompleted},
		4: {ID: 4, ProductID: 1, Quantity: dec("100"), Status: production.StatusCancelled},
	}}
	svc := newService(t, s, plans, nil)

	list, err := svc.PurchaseList(context.Background())
	if err != nil {
		t.Fatalf("PurchaseList: %v", err)
	}
	// flour: 1.5 kg needed, 10 in stock
	if len(list) != 2 {
		t.Fatalf("purchase list = %+v, want sugar and egg", list)
	}
	sugar, egg := list[0], list[1]
	if sugar.MaterialID != 5 || !sugar.Required.Equal(dec("3")) || !sugar.Shortage.Equal(dec("3")) || !sugar.Amount.Equal(dec("6")) {
		t.Errorf("sugar = %+v, want 3 kg short for 6", sugar)
	}
	if egg.MaterialID != 3 || !egg.Required.Equal(dec("12")) || !egg.Shortage.Equal(dec("5")) || !egg.Amount.Equal(dec("2.5")) {
		t.Errorf("egg = %+v, want 5 short for 2.5", egg)
	}
	if len(egg.PlanIDs) != 2 || egg.PlanIDs[0] != 1 || egg.PlanIDs[1] != 2 {
		t.Errorf("egg plans = %v, want [1 2]", egg.PlanIDs)
	}
}

func TestStatus(t *testing.T) {
	if production.Status("done").Valid() {
		t.Error(`"done" should not be a valid status`)
	}
	if !production.StatusInProgress.Open() || production.StatusCancelled.Open() {
		t.Error("Open() mismatch")
	}
}
