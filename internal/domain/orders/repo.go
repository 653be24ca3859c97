package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectOrder = `
	SELECT o.id, o.order_number, o.order_type, o.customer_supplier, o.order_date,
	       o.total_amount, o.shipping_cost, o.status, o.notes, o.created_at, o.updated_at
	FROM orders o
`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.Number, &o.Type, &o.CustomerSupplier, &o.Date,
		&o.TotalAmount, &o.ShippingCost, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateNumber
		case "23503":
			return inventory.ErrProductNotFound
		}
	}
	return err
}

// Create stores the order with its items; total_amount is items plus shipping.
func (r *Repo) Create(ctx context.Context, in NewOrder) (*Order, error) {
	if err := in.Validate(time.Now()); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, order_type, customer_supplier, order_date,
		                    total_amount, shipping_cost, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, in.Number, string(in.Type), in.CustomerSupplier, in.Date,
		in.Total(), in.ShippingCost, in.Notes).Scan(&id)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if err := insertItems(ctx, tx, id, in.Items); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Пустые unit и description берутся из товара.
func insertItems(ctx context.Context, db querier, orderID int64, items []NewItem) error {
	for _, it := range items {
		var productID *int64
		if it.ProductID > 0 {
			productID = &it.ProductID
		}
		_, err := db.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, description, quantity, unit_price,
			                         total_price, unit, notes)
			VALUES ($1, $2,
			        COALESCE(NULLIF($3,''), (SELECT name FROM products WHERE id=$2), ''),
			        $4, $5, $6,
			        COALESCE(NULLIF($7,''), (SELECT unit FROM products WHERE id=$2), '个'),
			        $8)
		`, orderID, productID, it.Description, it.Quantity, it.UnitPrice,
			it.TotalPrice(), it.Unit, it.Notes)
		if err != nil {
			return mapWriteErr(err)
		}
	}
	return nil
}

func listItems(ctx context.Context, db querier, orderID int64) ([]Item, error) {
	rows, err := db.Query(ctx, `
		SELECT oi.id, oi.order_id, COALESCE(oi.product_id, 0), COALESCE(p.name, ''),
		       oi.description, oi.quantity, oi.unit_price, oi.total_price, oi.unit, oi.notes
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Description, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Unit, &it.Notes); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetByID возвращает заказ со строками или (nil, nil), если его нет.
func (r *Repo) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectOrder+` WHERE o.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = listItems(ctx, r.pool, id); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns orders newest first, without items.
func (r *Repo) List(ctx context.Context, f ListFilter) (Page, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = 20
	}

	where := " WHERE 1=1"
	var args []any
	if f.Type != "" {
		args = append(args, string(f.Type))
		where += fmt.Sprintf(" AND o.order_type = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where += fmt.Sprintf(" AND o.status = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	sql := selectOrder + where +
		fmt.Sprintf(" ORDER BY o.order_date DESC, o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	out := Page{Page: f.Page, PerPage: f.PerPage, Total: total}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return Page{}, err
		}
		out.Orders = append(out.Orders, *o)
	}
	out.TotalPages = (total + f.PerPage - 1) / f.PerPage
	return out, rows.Err()
}

// lockPending locks the order row and checks that it can still change.
func lockPending(ctx context.Context, tx pgx.Tx, id int64) error {
	var status Status
	err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != StatusPending {
		return ErrClosed
	}
	return nil
}

// Update applies the patch to a pending order and recomputes total_amount.
func (r *Repo) Update(ctx context.Context, id int64, p Patch) (*Order, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockPending(ctx, tx, id); err != nil {
		return nil, err
	}

	var typ *string
	if p.Type != nil {
		s := string(*p.Type)
		typ = &s
	}
	_, err = tx.Exec(ctx, `
		UPDATE orders SET
			order_type        = COALESCE($2, order_type),
			customer_supplier = COALESCE($3, customer_supplier),
			order_date        = COALESCE($4, order_date),
			shipping_cost     = COALESCE($5, shipping_cost),
			notes             = COALESCE($6, notes),
			updated_at        = now()
		WHERE id = $1
	`, id, typ, p.CustomerSupplier, p.Date, p.ShippingCost, p.Notes)
	if err != nil {
		return nil, err
	}

	if p.Items != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
			return nil, err
		}
		if err := insertItems(ctx, tx, id, *p.Items); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET total_amount = shipping_cost +
			COALESCE((SELECT SUM(total_price) FROM order_items WHERE order_id = $1), 0)
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Cancel closes a pending order without touching stock.
func (r *Repo) Cancel(ctx context.Context, id int64) (*Order, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status='cancelled', updated_at=now()
		WHERE id=$1 AND status='pending'
	`, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, r.closedOrMissing(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a pending or cancelled order. Completed orders have posted
// stock movements and stay.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND status <> 'completed'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.closedOrMissing(ctx, id)
	}
	return nil
}

func (r *Repo) closedOrMissing(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrClosed
}

// Complete закрывает заказ и проводит движения склада в одной транзакции.
// При нехватке остатка для продажи ничего не меняется.
func (r *Repo) Complete(ctx context.Context, id int64, moves []inventory.NewTransaction) (*Order, []inventory.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status='completed', updated_at=now()
		WHERE id=$1 AND status='pending'
	`, id)
	if err != nil {
		return nil, nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, ErrClosed
	}

	txs, err := inventory.ApplyBatch(ctx, tx, moves)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return o, txs, nil
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_type, status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		GROUP BY order_type, status
	`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	out := NewStats()
	for rows.Next() {
		var (
			t      Type
			st     Status
			n      int
			amount decimal.Decimal
		)
		if err := rows.Scan(&t, &st, &n, &amount); err != nil {
			return Stats{}, err
		}
		out.Add(t, st, n, amount)
	}
	return out, rows.Err()
}
