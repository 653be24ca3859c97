package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Record проводит одну операцию: движение и остаток товара меняются в одной транзакции.
func (r *Repo) Record(ctx context.Context, in NewTransaction) (*Transaction, error) {
	out, err := r.RecordBatch(ctx, []NewTransaction{in})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// RecordBatch проводит все операции атомарно: либо все, либо ни одной.
func (r *Repo) RecordBatch(ctx context.Context, batch []NewTransaction) ([]Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out, err := ApplyBatch(ctx, tx, batch)
	if err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}

// ApplyBatch applies movements inside an existing transaction so callers can
// combine them with their own writes.
func ApplyBatch(ctx context.Context, tx pgx.Tx, batch []NewTransaction) ([]Transaction, error) {
	now := time.Now()
	out := make([]Transaction, 0, len(batch))
	for i := range batch {
		in := batch[i]
		if err := in.Validate(now); err != nil {
			return nil, err
		}
		t, err := apply(ctx, tx, in)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func apply(ctx context.Context, tx pgx.Tx, in NewTransaction) (*Transaction, error) {
	var t Transaction
	err := tx.QueryRow(ctx, `SELECT name FROM products WHERE id=$1 FOR UPDATE`, in.ProductID).Scan(&t.ProductName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	// Списание не может увести остаток в минус.
	tag, err := tx.Exec(ctx, `
		UPDATE products SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1 AND quantity + $2 >= 0
	`, in.ProductID, in.delta())
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("product %d: %w", in.ProductID, ErrInsufficientStock)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (product_id, transaction_type, quantity, unit_price, total_value,
		                          reference_no, customer_supplier, transaction_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, product_id, transaction_type, quantity, unit_price, total_value,
		          reference_no, customer_supplier, transaction_date, notes, created_at
	`, in.ProductID, string(in.Type), in.Quantity, in.UnitPrice, in.TotalValue(),
		in.ReferenceNo, in.CustomerSupplier, in.Date, in.Notes).Scan(
		&t.ID, &t.ProductID, &t.Type, &t.Quantity, &t.UnitPrice, &t.TotalValue,
		&t.ReferenceNo, &t.CustomerSupplier, &t.Date, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List возвращает последние операции, новые сверху.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Transaction, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.product_id, COALESCE(p.name,''), t.transaction_type, t.quantity, t.unit_price,
		       t.total_value, t.reference_no, t.customer_supplier, t.transaction_date, t.notes, t.created_at
		FROM transactions t
		LEFT JOIN products p ON p.id = t.product_id
		WHERE ($1::bigint = 0 OR t.product_id = $1)
		  AND ($2::text = '' OR t.transaction_type = $2)
		ORDER BY t.transaction_date DESC, t.id DESC
		LIMIT $3
	`, f.ProductID, string(f.Type), f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.ProductID, &t.ProductName, &t.Type, &t.Quantity, &t.UnitPrice,
			&t.TotalValue, &t.ReferenceNo, &t.CustomerSupplier, &t.Date, &t.Notes, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
