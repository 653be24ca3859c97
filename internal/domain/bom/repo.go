package bom

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/units"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectEdge = `
	SELECT b.id, b.product_id, b.material_id, b.quantity_required, b.unit, b.created_at, b.updated_at
	FROM bom b
`

func scanEdge(row pgx.Row) (*Edge, error) {
	var e Edge
	if err := row.Scan(&e.ID, &e.ProductID, &e.MaterialID, &e.Quantity, &e.Unit, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByProduct возвращает прямые строки BOM, упорядоченные по названию материала.
func (r *Repo) ListByProduct(ctx context.Context, productID int64) ([]Edge, error) {
	rows, err := r.pool.Query(ctx, selectEdge+`
		LEFT JOIN products m ON m.id = b.material_id
		WHERE b.product_id = $1
		ORDER BY m.name, b.material_id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Edge, error) {
	e, err := scanEdge(r.pool.QueryRow(ctx, selectEdge+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// Create adds an edge and marks the product as composite.
func (r *Repo) Create(ctx context.Context, productID, materialID int64, qty decimal.Decimal, unit string) (*Edge, error) {
	if productID == materialID {
		return nil, ErrSelfReference
	}
	qty = units.RoundQuantity(qty)
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if unit = strings.TrimSpace(unit); unit == "" {
		unit = units.Default
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	e, err := scanEdge(tx.QueryRow(ctx, `
		INSERT INTO bom (product_id, material_id, quantity_required, unit)
		VALUES ($1,$2,$3,$4)
		RETURNING id, product_id, material_id, quantity_required, unit, created_at, updated_at
	`, productID, materialID, qty, unit))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, ErrDuplicateEdge
			case "23503":
				return nil, ErrNotFound
			}
		}
		return nil, err
	}

	if _, err = tx.Exec(ctx, `UPDATE products SET is_composite=TRUE, updated_at=now() WHERE id=$1`, productID); err != nil {
		return nil, err
	}
	return e, tx.Commit(ctx)
}

func (r *Repo) UpdateQuantity(ctx context.Context, id int64, qty decimal.Decimal) (*Edge, error) {
	qty = units.RoundQuantity(qty)
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	e, err := scanEdge(r.pool.QueryRow(ctx, `
		UPDATE bom SET quantity_required=$2, updated_at=now()
		WHERE id=$1
		RETURNING id, product_id, material_id, quantity_required, unit, created_at, updated_at
	`, id, qty))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var productID int64
	err = tx.QueryRow(ctx, `DELETE FROM bom WHERE id=$1 RETURNING product_id`, id).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err = r.refreshComposite(ctx, tx, productID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteByProduct удаляет весь BOM изделия и возвращает число удалённых строк.
func (r *Repo) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM bom WHERE product_id=$1`, productID)
	if err != nil {
		return 0, err
	}
	if err = r.refreshComposite(ctx, tx, productID); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), tx.Commit(ctx)
}

func (r *Repo) refreshComposite(ctx context.Context, tx pgx.Tx, productID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE products
		SET is_composite = EXISTS (SELECT 1 FROM bom WHERE product_id = $1), updated_at = now()
		WHERE id = $1
	`, productID)
	return err
}
