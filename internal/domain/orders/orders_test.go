package orders_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/orders"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestValidateFillsDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	in := orders.NewOrder{
		Type:             orders.TypePurchase,
		CustomerSupplier: "  Mill Co ",
		ShippingCost:     dec("5"),
		Items: []orders.NewItem{
			{ProductID: 1, Quantity: dec("2"), UnitPrice: dec("3.5")},
			{Description: "pallet fee", Quantity: dec("1"), UnitPrice: dec("4")},
		},
	}
	if err := in.Validate(now); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !strings.HasPrefix(in.Number, "ORD20240501100000") || len(in.Number) != 21 {
		t.Errorf("Number = %q", in.Number)
	}
	if !in.Date.Equal(now) || in.CustomerSupplier != "Mill Co" {
		t.Errorf("order = %+v", in)
	}
	// 7 + 4 + shipping 5
	if !in.Total().Equal(dec("16")) {
		t.Errorf("Total = %s, want 16", in.Total())
	}
}

func TestValidateRejects(t *testing.T) {
	item := func(q string) []orders.NewItem {
		return []orders.NewItem{{ProductID: 1, Quantity: dec(q), UnitPrice: dec("1")}}
	}
	cases := []struct {
		name string
		in   orders.NewOrder
		want error
	}{
		{"bad type", orders.NewOrder{Type: "gift", CustomerSupplier: "x"}, orders.ErrInvalidType},
		{"no counterparty", orders.NewOrder{Type: orders.TypeSales, CustomerSupplier: " "}, orders.ErrInvalid},
		{"negative shipping", orders.NewOrder{Type: orders.TypePurchase, CustomerSupplier: "x", ShippingCost: dec("-1")}, orders.ErrInvalid},
		{"zero quantity", orders.NewOrder{Type: orders.TypeSales, CustomerSupplier: "x", Items: item("0")}, orders.ErrInvalid},
		{"empty free text line", orders.NewOrder{Type: orders.TypeSales, CustomerSupplier: "x",
			Items: []orders.NewItem{{Quantity: dec("1")}}}, orders.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.in.Validate(time.Now()); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func purchase() orders.Order {
	return orders.Order{
		ID:               3,
		Number:           "ORD-3",
		Type:             orders.TypePurchase,
		CustomerSupplier: "Mill Co",
		Date:             time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		ShippingCost:     dec("8"),
		Status:           orders.StatusPending,
		Items: []orders.Item{
			{ProductID: 1, Quantity: dec("10"), UnitPrice: dec("2")},
			{ProductID: 2, Quantity: dec("5"), UnitPrice: dec("12")},
			{Description: "customs form", Quantity: dec("1"), UnitPrice: dec("0")},
		},
	}
}

func TestLandedPricesSpreadShipping(t *testing.T) {
	got := orders.LandedPrices(purchase())
	// 8 over 20 + 60: every item carries 10% on top
	want := []string{"2.2", "13.2", "0"}
	for i, w := range want {
		if !got[i].Equal(dec(w)) {
			t.Errorf("item %d landed price = %s, want %s", i, got[i], w)
		}
	}
}

func TestLandedPricesWithoutShipping(t *testing.T) {
	o := purchase()
	o.ShippingCost = decimal.Zero
	if got := orders.LandedPrices(o); !got[0].Equal(dec("2")) || !got[1].Equal(dec("12")) {
		t.Errorf("landed = %v, want list prices", got)
	}

	o = purchase()
	o.Type = orders.TypeSales
	if got := orders.LandedPrices(o); !got[1].Equal(dec("12")) {
		t.Errorf("sales price = %s, want 12", got[1])
	}
}

func TestMoves(t *testing.T) {
	moves := orders.Moves(purchase())
	if len(moves) != 2 {
		t.Fatalf("moves = %d, want 2 (free text line skipped)", len(moves))
	}
	for _, m := range moves {
		if m.Type != inventory.MoveIn || m.ReferenceNo != "ORD-3" || m.CustomerSupplier != "Mill Co" {
			t.Errorf("move = %+v", m)
		}
		if m.Notes != "purchase order #ORD-3" {
			t.Errorf("notes = %q", m.Notes)
		}
	}
	if !moves[1].Quantity.Equal(dec("5")) || !moves[1].UnitPrice.Equal(dec("13.2")) {
		t.Errorf("second move = %+v", moves[1])
	}
}

type fakeStore struct {
	orders map[int64]orders.Order
	posted [][]inventory.NewTransaction
	err    error
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*orders.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (f *fakeStore) Complete(_ context.Context, id int64, moves []inventory.NewTransaction) (*orders.Order, []inventory.Transaction, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.posted = append(f.posted, moves)
	o := f.orders[id]
	o.Status = orders.StatusCompleted
	f.orders[id] = o
	out := make([]inventory.Transaction, len(moves))
	for i, m := range moves {
		out[i] = inventory.Transaction{ID: int64(i + 1), ProductID: m.ProductID, Type: m.Type, Quantity: m.Quantity, UnitPrice: m.UnitPrice}
	}
	return &o, out, nil
}

type recordedAlerts struct{ ids []int64 }

func (r *recordedAlerts) CheckAlerts(_ context.Context, ids ...int64) { r.ids = append(r.ids, ids...) }

func newService(store *fakeStore, alerts orders.AlertChecker) *orders.Service {
	return orders.NewService(store, alerts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCompletePurchase(t *testing.T) {
	store := &fakeStore{orders: map[int64]orders.Order{3: purchase()}}
	alerts := &recordedAlerts{}
	svc := newService(store, alerts)

	o, txs, err := svc.Complete(context.Background(), 3)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if o.Status != orders.StatusCompleted || len(txs) != 2 {
		t.Fatalf("order = %+v, transactions = %d", o, len(txs))
	}
	if !txs[0].UnitPrice.Equal(dec("2.2")) {
		t.Errorf("receipt price = %s, want 2.2", txs[0].UnitPrice)
	}
	if len(alerts.ids) != 0 {
		t.Errorf("purchase triggered alert check for %v", alerts.ids)
	}

	if _, _, err := svc.Complete(context.Background(), 3); !errors.Is(err, orders.ErrClosed) {
		t.Errorf("second Complete err = %v, want ErrClosed", err)
	}
	if len(store.posted) != 1 {
		t.Errorf("posted %d times, want 1", len(store.posted))
	}
}

func TestCompleteSalesChecksAlerts(t *testing.T) {
	o := purchase()
	o.Type = orders.TypeSales
	store := &fakeStore{orders: map[int64]orders.Order{3: o}}
	alerts := &recordedAlerts{}

	if _, _, err := newService(store, alerts).Complete(context.Background(), 3); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	moves := store.posted[0]
	if moves[0].Type != inventory.MoveOut || !moves[1].UnitPrice.Equal(dec("12")) {
		t.Errorf("sales moves = %+v", moves)
	}
	if len(alerts.ids) != 2 || alerts.ids[0] != 1 || alerts.ids[1] != 2 {
		t.Errorf("alert ids = %v, want [1 2]", alerts.ids)
	}
}

func TestCompleteRefused(t *testing.T) {
	cancelled := purchase()
	cancelled.Status = orders.StatusCancelled
	store := &fakeStore{orders: map[int64]orders.Order{3: cancelled}}
	svc := newService(store, nil)

	if _, _, err := svc.Complete(context.Background(), 3); !errors.Is(err, orders.ErrClosed) {
		t.Errorf("cancelled order err = %v, want ErrClosed", err)
	}
	if _, _, err := svc.Complete(context.Background(), 99); !errors.Is(err, orders.ErrNotFound) {
		t.Errorf("missing order err = %v, want ErrNotFound", err)
	}

	store.orders[4] = purchase()
	store.err = inventory.ErrInsufficientStock
	if _, _, err := svc.Complete(context.Background(), 4); !errors.Is(err, inventory.ErrInsufficientStock) {
		t.Errorf("store err = %v, want ErrInsufficientStock", err)
	}
}

func TestStatsAdd(t *testing.T) {
	st := orders.NewStats()
	st.Add(orders.TypePurchase, orders.StatusCompleted, 2, dec("30"))
	st.Add(orders.TypeSales, orders.StatusPending, 1, dec("12.5"))
	st.Add(orders.TypePurchase, orders.StatusCancelled, 1, dec("5"))

	if st.Total != 4 || st.ByType[orders.TypePurchase] != 3 || st.ByStatus[orders.StatusPending] != 1 {
		t.Errorf("counts = %+v", st)
	}
	if !st.Amount.Equal(dec("47.5")) || !st.Amounts[orders.TypePurchase].Equal(dec("35")) {
		t.Errorf("amounts = %s / %s", st.Amount, st.Amounts[orders.TypePurchase])
	}
}
