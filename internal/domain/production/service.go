package production

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/units"
)

type PlanStore interface {
	GetByID(ctx context.Context, id int64) (*Plan, error)
	List(ctx context.Context, status Status) ([]Plan, error)
	Complete(ctx context.Context, id int64, moves []inventory.NewTransaction) ([]inventory.Transaction, error)
}

// Expander is satisfied by *bom.Engine.
type Expander interface {
	Expand(ctx context.Context, productID int64) ([]bom.Line, error)
}

type AlertChecker interface {
	CheckAlerts(ctx context.Context, productIDs ...int64)
}

type Service struct {
	plans  PlanStore
	bom    Expander
	alerts AlertChecker
	log    *slog.Logger
}

func NewService(plans PlanStore, expander Expander, alerts AlertChecker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{plans: plans, bom: expander, alerts: alerts, log: log}
}

func (s *Service) plan(ctx context.Context, id int64) (*Plan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Requirements expands the plan's product and scales every material by the
// planned quantity.
func (s *Service) Requirements(ctx context.Context, id int64) (*Requirements, error) {
	p, err := s.plan(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.bom.Expand(ctx, p.ProductID)
	if err != nil {
		return nil, err
	}

	out := &Requirements{Plan: *p, TotalCost: decimal.Zero}
	for _, l := range lines {
		it := requirementFor(l, p.Quantity)
		out.Items = append(out.Items, it)
		out.TotalCost = out.TotalCost.Add(it.Cost)
	}
	return out, nil
}

func requirementFor(l bom.Line, planQty decimal.Decimal) Requirement {
	unit := l.MaterialUnit
	if unit == "" {
		unit = l.Unit
	}
	required := units.RoundQuantity(units.ConvertQuantity(l.Quantity.Mul(planQty), l.Unit, unit))
	shortage := required.Sub(l.CurrentStock)
	if shortage.IsNegative() {
		shortage = decimal.Zero
	}
	return Requirement{
		MaterialID:   l.MaterialID,
		MaterialName: l.MaterialName,
		MaterialSKU:  l.MaterialSKU,
		Unit:         unit,
		UnitPrice:    units.ConvertPrice(l.UnitPrice, l.Unit, unit),
		Required:     required,
		CurrentStock: l.CurrentStock,
		Shortage:     shortage,
		Cost:         l.ItemCost.Mul(planQty),
	}
}

// Complete consumes the plan's materials and receives the finished product.
// Nothing is written when any material is short.
func (s *Service) Complete(ctx context.Context, id int64) ([]inventory.Transaction, error) {
	req, err := s.Requirements(ctx, id)
	if err != nil {
		return nil, err
	}
	p := req.Plan
	if !p.Status.Open() {
		return nil, ErrClosed
	}
	if len(req.Items) == 0 {
		return nil, ErrNoBOM
	}
	if req.HasShortage() {
		for _, it := range req.Items {
			if it.Shortage.IsPositive() {
				return nil, fmt.Errorf("%w: material %d short by %s %s", ErrShortage, it.MaterialID, it.Shortage, it.Unit)
			}
		}
	}

	ref := fmt.Sprintf("PP-%d", p.ID)
	note := fmt.Sprintf("production plan #%d", p.ID)
	moves := make([]inventory.NewTransaction, 0, len(req.Items)+1)
	consumed := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		if !it.Required.IsPositive() {
			continue
		}
		moves = append(moves, inventory.NewTransaction{
			ProductID:   it.MaterialID,
			Type:        inventory.MoveOut,
			Quantity:    it.Required,
			UnitPrice:   it.UnitPrice,
			ReferenceNo: ref,
			Notes:       note,
		})
		consumed = append(consumed, it.MaterialID)
	}
	moves = append(moves, inventory.NewTransaction{
		ProductID:   p.ProductID,
		Type:        inventory.MoveIn,
		Quantity:    p.Quantity,
		UnitPrice:   req.TotalCost.Div(p.Quantity),
		ReferenceNo: ref,
		Notes:       note,
	})

	out, err := s.plans.Complete(ctx, p.ID, moves)
	if err != nil {
		return nil, err
	}
	s.log.Info("production plan completed",
		"plan_id", p.ID, "product_id", p.ProductID, "quantity", p.Quantity.String(), "materials", len(consumed))
	if s.alerts != nil {
		s.alerts.CheckAlerts(ctx, consumed...)
	}
	return out, nil
}
