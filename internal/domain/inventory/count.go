package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/units"
)

var ErrInvalidCount = errors.New("counted quantity must be >= 0")

// Count is the quantity of a product found on the shelf.
type Count struct {
	ProductID int64
	Actual    decimal.Decimal
}

type CountResult struct {
	ProductID   int64
	ProductName string
	System      decimal.Decimal
	Actual      decimal.Decimal
	Difference  decimal.Decimal
	Transaction *Transaction // nil, если расхождения нет
}

// CountAdjustment returns the movement that brings the system quantity to
// the counted one, valued at the product price. ok is false when they match.
func CountAdjustment(c Count, system, price decimal.Decimal, ref string) (NewTransaction, bool) {
	diff := c.Actual.Sub(system)
	if diff.IsZero() {
		return NewTransaction{}, false
	}
	typ := MoveIn
	if diff.IsNegative() {
		typ = MoveOut
	}
	return NewTransaction{
		ProductID:   c.ProductID,
		Type:        typ,
		Quantity:    diff.Abs(),
		UnitPrice:   price,
		ReferenceNo: ref,
		Notes:       fmt.Sprintf("stock count: system %s, actual %s", system, c.Actual),
	}, true
}

// Reconcile posts one adjustment per product whose counted quantity differs
// from stock. All adjustments share a CHECK- reference and commit together.
func (r *Repo) Reconcile(ctx context.Context, counts []Count) ([]CountResult, error) {
	for i := range counts {
		counts[i].Actual = counts[i].Actual.Round(units.Scale)
		if counts[i].Actual.IsNegative() {
			return nil, fmt.Errorf("product %d: %w", counts[i].ProductID, ErrInvalidCount)
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ref := "CHECK-" + time.Now().Format("20060102150405")
	out := make([]CountResult, 0, len(counts))
	for _, c := range counts {
		res := CountResult{ProductID: c.ProductID, Actual: c.Actual}
		var price decimal.Decimal
		err := tx.QueryRow(ctx, `SELECT name, quantity, price FROM products WHERE id=$1 FOR UPDATE`, c.ProductID).
			Scan(&res.ProductName, &res.System, &price)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", c.ProductID, ErrProductNotFound)
		}
		if err != nil {
			return nil, err
		}
		res.Difference = c.Actual.Sub(res.System)

		if adj, ok := CountAdjustment(c, res.System, price, ref); ok {
			txs, err := ApplyBatch(ctx, tx, []NewTransaction{adj})
			if err != nil {
				return nil, err
			}
			res.Transaction = &txs[0]
		}
		out = append(out, res)
	}
	return out, tx.Commit(ctx)
}
