package production

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/units"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectPlan = `
	SELECT pp.id, pp.product_id, COALESCE(p.name,''), pp.quantity, pp.produced_quantity,
	       pp.scheduled_date, pp.status, pp.notes, pp.created_at, pp.updated_at
	FROM production_plans pp
	LEFT JOIN products p ON p.id = pp.product_id
`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	if err := row.Scan(&p.ID, &p.ProductID, &p.ProductName, &p.Quantity, &p.ProducedQuantity,
		&p.ScheduledDate, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, in NewPlan) (*Plan, error) {
	in.Quantity = units.RoundQuantity(in.Quantity)
	if !in.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO production_plans (product_id, quantity, scheduled_date, notes)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, in.ProductID, in.Quantity, in.ScheduledDate, in.Notes).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, inventory.ErrProductNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID возвращает (nil, nil), если плана нет.
func (r *Repo) GetByID(ctx context.Context, id int64) (*Plan, error) {
	p, err := scanPlan(r.pool.QueryRow(ctx, selectPlan+` WHERE pp.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// List возвращает планы по дате; пустой status означает все.
func (r *Repo) List(ctx context.Context, status Status) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, selectPlan+`
		WHERE ($1::text = '' OR pp.status = $1)
		ORDER BY pp.scheduled_date, pp.id
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, id int64, status Status) (*Plan, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE production_plans SET status=$2, updated_at=now()
		WHERE id=$1 AND status NOT IN ('completed','cancelled')
	`, id, string(status))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrNotFound
		}
		return nil, ErrClosed
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM production_plans WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete проводит списание материалов и приход изделия вместе с закрытием плана.
// Если хоть одна операция не проходит (например, не хватает остатка), ничего не меняется.
func (r *Repo) Complete(ctx context.Context, id int64, moves []inventory.NewTransaction) ([]inventory.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE production_plans
		SET status='completed', produced_quantity=quantity, updated_at=now()
		WHERE id=$1 AND status IN ('pending','in_progress')
	`, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrClosed
	}

	out, err := inventory.ApplyBatch(ctx, tx, moves)
	if err != nil {
		return nil, err
	}
	return out, tx.Commit(ctx)
}
