package production

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// Purchase is a material that open plans need more of than is in stock.
type Purchase struct {
	MaterialID   int64
	MaterialName string
	MaterialSKU  string
	Unit         string
	UnitPrice    decimal.Decimal
	Required     decimal.Decimal
	CurrentStock decimal.Decimal
	Shortage     decimal.Decimal
	Amount       decimal.Decimal
	PlanIDs      []int64
}

// PurchaseList sums the requirements of every pending and in-progress plan
// per material and keeps the materials whose total exceeds stock, largest
// purchase amount first.
func (s *Service) PurchaseList(ctx context.Context) ([]Purchase, error) {
	var open []Plan
	for _, st := range []Status{StatusPending, StatusInProgress} {
		list, err := s.plans.List(ctx, st)
		if err != nil {
			return nil, err
		}
		open = append(open, list...)
	}

	var (
		order []int64
		byID  = make(map[int64]*Purchase)
	)
	for _, p := range open {
		lines, err := s.bom.Expand(ctx, p.ProductID)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			it := requirementFor(l, p.Quantity)
			cur, ok := byID[it.MaterialID]
			if !ok {
				cur = &Purchase{
					MaterialID:   it.MaterialID,
					MaterialName: it.MaterialName,
					MaterialSKU:  it.MaterialSKU,
					Unit:         it.Unit,
					UnitPrice:    it.UnitPrice,
					Required:     decimal.Zero,
					CurrentStock: it.CurrentStock,
				}
				byID[it.MaterialID] = cur
				order = append(order, it.MaterialID)
			}
			cur.Required = cur.Required.Add(it.Required)
			cur.PlanIDs = append(cur.PlanIDs, p.ID)
		}
	}

	out := make([]Purchase, 0, len(order))
	for _, id := range order {
		pu := byID[id]
		pu.Shortage = pu.Required.Sub(pu.CurrentStock)
		if !pu.Shortage.IsPositive() {
			continue
		}
		pu.Amount = pu.Shortage.Mul(pu.UnitPrice)
		out = append(out, *pu)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.GreaterThan(out[j].Amount) })
	s.log.Debug("purchase list built", "open_plans", len(open), "materials", len(out))
	return out, nil
}
