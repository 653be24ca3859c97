package bom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Aurora209/inventory-system/internal/domain/products"
)

var exportHeader = []interface{}{
	"material_id",
	"material_sku",
	"material_name",
	"quantity_required",
	"unit",
	"material_price",
	"current_stock",
	"item_cost",
	"shipping_cost",
	"total_cost_with_shipping",
}

const exportSheet = "BOM"

// WriteXLSX renders lines as a spreadsheet with a header row and a total row.
func WriteXLSX(w io.Writer, lines []Line) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sheet := exportSheet

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, l := range lines {
		excelRow := []interface{}{
			l.MaterialID,
			l.MaterialSKU,
			l.MaterialName,
			l.Quantity.InexactFloat64(),
			l.Unit,
			l.UnitPrice.InexactFloat64(),
			l.CurrentStock.InexactFloat64(),
			l.ItemCost.InexactFloat64(),
			nil,
			nil,
		}
		if l.ShippingCost.Valid {
			excelRow[8] = l.ShippingCost.Decimal.InexactFloat64()
			excelRow[9] = l.TotalWithShipping.Decimal.InexactFloat64()
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	totalRow := []interface{}{"total", nil, nil, nil, nil, nil, nil, TotalCost(lines).InexactFloat64(), nil, TotalWithShipping(lines).InexactFloat64()}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &totalRow); err != nil {
		return fmt.Errorf("write total: %w", err)
	}

	return f.Write(w)
}

// ImportRow is one spreadsheet row: material_sku | quantity_required | unit.
type ImportRow struct {
	Row         int
	MaterialSKU string
	Quantity    decimal.Decimal
	Unit        string
}

type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ReadXLSX parses the first sheet. The first row is a header; empty rows are skipped.
func ReadXLSX(r io.Reader) ([]ImportRow, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}

	var out []ImportRow
	var bad []RowError
	for i, cols := range rows {
		if i == 0 {
			continue
		}
		rowNum := i + 1
		get := func(idx int) string {
			if idx < len(cols) {
				return strings.TrimSpace(cols[idx])
			}
			return ""
		}
		sku, qtyStr, unit := get(0), get(1), get(2)
		if sku == "" && qtyStr == "" && unit == "" {
			continue
		}
		if sku == "" {
			bad = append(bad, RowError{Row: rowNum, Reason: "material_sku is empty"})
			continue
		}
		qty, err := decimal.NewFromString(strings.ReplaceAll(qtyStr, ",", "."))
		if err != nil || !qty.IsPositive() {
			bad = append(bad, RowError{Row: rowNum, Reason: "quantity_required must be a positive number"})
			continue
		}
		out = append(out, ImportRow{Row: rowNum, MaterialSKU: sku, Quantity: qty, Unit: unit})
	}
	return out, bad, nil
}

type SKULookup interface {
	GetBySKU(ctx context.Context, sku string) (*products.Product, error)
}

type EdgeCreator interface {
	Create(ctx context.Context, productID, materialID int64, qty decimal.Decimal, unit string) (*Edge, error)
}

type ImportResult struct {
	Created []Edge
	Skipped []RowError
}

// Import creates edges for productID from parsed rows. Rows that reference an
// unknown sku or break an edge rule are reported and skipped.
func Import(ctx context.Context, lookup SKULookup, edges EdgeCreator, productID int64, rows []ImportRow) (ImportResult, error) {
	var res ImportResult
	for _, row := range rows {
		m, err := lookup.GetBySKU(ctx, row.MaterialSKU)
		if err != nil {
			return res, fmt.Errorf("lookup sku %q: %w", row.MaterialSKU, err)
		}
		if m == nil {
			res.Skipped = append(res.Skipped, RowError{Row: row.Row, Reason: fmt.Sprintf("unknown sku %q", row.MaterialSKU)})
			continue
		}
		unit := row.Unit
		if unit == "" {
			unit = m.Unit
		}
		e, err := edges.Create(ctx, productID, m.ID, row.Quantity, unit)
		switch {
		case err == nil:
			res.Created = append(res.Created, *e)
		case isEdgeRuleError(err):
			res.Skipped = append(res.Skipped, RowError{Row: row.Row, Reason: err.Error()})
		default:
			return res, fmt.Errorf("create edge from row %d: %w", row.Row, err)
		}
	}
	return res, nil
}

func isEdgeRuleError(err error) bool {
	for _, target := range []error{ErrSelfReference, ErrDuplicateEdge, ErrInvalidQuantity, ErrNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
