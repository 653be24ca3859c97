package bom

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/units"
)

// Engine resolves direct and fully expanded bills of materials with costs.
// It keeps no state between calls.
type Engine struct {
	materials MaterialStore
	edges     EdgeStore
	log       *slog.Logger
}

func NewEngine(materials MaterialStore, edges EdgeStore, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{materials: materials, edges: edges, log: log}
}

// Direct returns the immediate materials of a product, one line per edge.
func (e *Engine) Direct(ctx context.Context, productID int64) ([]Line, error) {
	edges, err := e.listEdges(ctx, productID)
	if err != nil {
		return nil, err
	}
	return e.directFrom(ctx, edges)
}

// Expand resolves every sub-assembly down to materials without a BOM of their
// own and aggregates repeated materials into one line each.
func (e *Engine) Expand(ctx context.Context, productID int64) ([]Line, error) {
	edges, err := e.listEdges(ctx, productID)
	if err != nil {
		return nil, err
	}
	return e.expand(ctx, productID, edges, nil)
}

func (e *Engine) listEdges(ctx context.Context, productID int64) ([]Edge, error) {
	edges, err := e.edges.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list bom of product %d: %w", productID, err)
	}
	return edges, nil
}

func (e *Engine) directFrom(ctx context.Context, edges []Edge) ([]Line, error) {
	out := make([]Line, 0, len(edges))
	for _, edge := range edges {
		line, err := e.lineFor(ctx, edge)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// expand works on edges already fetched for productID. path holds the
// products on the current branch only; each call works on its own copy so
// sibling sub-trees never suppress each other.
func (e *Engine) expand(ctx context.Context, productID int64, edges []Edge, path map[int64]struct{}) ([]Line, error) {
	branch := make(map[int64]struct{}, len(path)+1)
	for id := range path {
		branch[id] = struct{}{}
	}
	branch[productID] = struct{}{}

	direct, err := e.directFrom(ctx, edges)
	if err != nil {
		return nil, err
	}

	var agg aggregate
	for _, line := range direct {
		if _, onPath := branch[line.MaterialID]; onPath {
			e.log.Debug("bom cycle broken", "product_id", productID, "material_id", line.MaterialID)
			continue
		}
		sub, err := e.listEdges(ctx, line.MaterialID)
		if err != nil {
			return nil, err
		}
		if len(sub) == 0 {
			agg.add(line)
			continue
		}

		children, err := e.expand(ctx, line.MaterialID, sub, branch)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			child.Quantity = child.Quantity.Mul(line.Quantity)
			child.ItemCost = child.Quantity.Mul(child.UnitPrice)
			agg.add(child)
		}
	}
	return agg.lines, nil
}

func (e *Engine) lineFor(ctx context.Context, edge Edge) (Line, error) {
	m, err := e.materials.GetByID(ctx, edge.MaterialID)
	if err != nil {
		return Line{}, fmt.Errorf("get material %d: %w", edge.MaterialID, err)
	}

	line := Line{
		MaterialID: edge.MaterialID,
		Quantity:   edge.Quantity,
		Unit:       edge.Unit,
	}
	if m == nil {
		e.log.Warn("bom references missing material", "product_id", edge.ProductID, "material_id", edge.MaterialID)
		if line.Unit == "" {
			line.Unit = units.Default
		}
		line.MaterialUnit = line.Unit
		return line, nil
	}

	line.MaterialName = m.Name
	line.MaterialSKU = m.SKU
	line.MaterialUnit = m.Unit
	line.CurrentStock = m.Quantity
	if line.Unit == "" {
		line.Unit = m.Unit
	}

	line.UnitPrice = m.Price
	if !units.Same(m.Unit, line.Unit) {
		if !units.Convertible(m.Unit, line.Unit) {
			e.log.Warn("unit not convertible",
				"material_id", m.ID, "material_unit", m.Unit, "bom_unit", line.Unit,
				"material_family", units.FamilyOf(m.Unit), "bom_family", units.FamilyOf(line.Unit))
		}
		line.UnitPrice = units.ConvertPrice(m.Price, m.Unit, line.Unit)
	}
	line.ItemCost = line.Quantity.Mul(line.UnitPrice)
	return line, nil
}

// aggregate merges lines by material id. The first occurrence of a material
// fixes its unit, price, name and sku; later quantities are converted into
// that unit before summing.
type aggregate struct {
	lines []Line
	index map[int64]int
}

func (a *aggregate) add(l Line) {
	if a.index == nil {
		a.index = make(map[int64]int)
	}
	i, ok := a.index[l.MaterialID]
	if !ok {
		a.index[l.MaterialID] = len(a.lines)
		a.lines = append(a.lines, l)
		return
	}
	cur := &a.lines[i]
	cur.Quantity = cur.Quantity.Add(units.ConvertQuantity(l.Quantity, l.Unit, cur.Unit))
	cur.ItemCost = cur.Quantity.Mul(cur.UnitPrice)
}

// TotalCost sums item costs.
func TotalCost(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.ItemCost)
	}
	return total
}
