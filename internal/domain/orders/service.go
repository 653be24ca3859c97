package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/units"
)

type Store interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	Complete(ctx context.Context, id int64, moves []inventory.NewTransaction) (*Order, []inventory.Transaction, error)
}

type AlertChecker interface {
	CheckAlerts(ctx context.Context, productIDs ...int64)
}

type Service struct {
	store  Store
	alerts AlertChecker
	log    *slog.Logger
}

func NewService(store Store, alerts AlertChecker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, alerts: alerts, log: log}
}

// Complete closes a pending order and posts its stock movements in one
// database transaction.
func (s *Service) Complete(ctx context.Context, id int64) (*Order, []inventory.Transaction, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, ErrNotFound
	}
	if o.Status != StatusPending {
		return nil, nil, ErrClosed
	}

	moves := Moves(*o)
	done, txs, err := s.store.Complete(ctx, id, moves)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("order completed",
		"order_id", id, "number", o.Number, "type", string(o.Type), "moves", len(moves))

	if s.alerts != nil && o.Type.Move() == inventory.MoveOut {
		ids := make([]int64, 0, len(moves))
		for _, m := range moves {
			ids = append(ids, m.ProductID)
		}
		s.alerts.CheckAlerts(ctx, ids...)
	}
	return done, txs, nil
}

// Moves builds the stock movements of an order. Purchase receipts carry the
// item's share of the shipping cost in their unit price; sales go out at the
// sold price. Lines without a product are skipped.
func Moves(o Order) []inventory.NewTransaction {
	landed := LandedPrices(o)
	move := o.Type.Move()
	note := fmt.Sprintf("%s order #%s", o.Type, o.Number)

	out := make([]inventory.NewTransaction, 0, len(o.Items))
	for i, it := range o.Items {
		if it.ProductID == 0 {
			continue
		}
		out = append(out, inventory.NewTransaction{
			ProductID:        it.ProductID,
			Type:             move,
			Quantity:         it.Quantity,
			UnitPrice:        landed[i],
			ReferenceNo:      o.Number,
			CustomerSupplier: o.CustomerSupplier,
			Date:             o.Date,
			Notes:            note,
		})
	}
	return out
}

// LandedPrices returns the unit price of every item, index for index. For a
// purchase with shipping the cost is spread over the items in proportion to
// their totals, the same way BOM lines share a shipping cost.
func LandedPrices(o Order) []decimal.Decimal {
	out := make([]decimal.Decimal, len(o.Items))
	for i, it := range o.Items {
		out[i] = it.UnitPrice
	}
	if o.Type != TypePurchase || !o.ShippingCost.IsPositive() {
		return out
	}

	lines := make([]bom.Line, len(o.Items))
	for i, it := range o.Items {
		lines[i] = bom.Line{
			MaterialID: it.ProductID,
			Quantity:   it.Quantity,
			Unit:       it.Unit,
			UnitPrice:  it.UnitPrice,
			ItemCost:   it.Quantity.Mul(it.UnitPrice),
		}
	}
	for i, l := range bom.AllocateShipping(lines, o.ShippingCost) {
		if !l.TotalWithShipping.Valid || !l.Quantity.IsPositive() {
			continue
		}
		out[i] = l.TotalWithShipping.Decimal.Div(l.Quantity).Round(units.Scale)
	}
	return out
}
