package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const categoryCols = `id, name, parent_id, level, created_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.Level, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create добавляет категорию; level вычисляется от родителя.
func (r *Repo) Create(ctx context.Context, name string, parentID *int64) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	level := 1
	if parentID != nil {
		parent, err := r.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
		if parent.Level >= MaxLevel {
			return nil, ErrTooDeep
		}
		level = parent.Level + 1
	}

	c, err := scanCategory(r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, parent_id, level) VALUES ($1,$2,$3)
		RETURNING `+categoryCols, name, parentID, level))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return c, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryCols+` FROM categories WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// List возвращает все категории: сначала корни, затем подкатегории, по имени.
func (r *Repo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryCols+`
		FROM categories
		ORDER BY level, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) Tree(ctx context.Context) ([]Node, error) {
	flat, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

func (r *Repo) Rename(ctx context.Context, id int64, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	c, err := scanCategory(r.pool.QueryRow(ctx, `
		UPDATE categories SET name=$2 WHERE id=$1
		RETURNING `+categoryCols, id, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateName
		}
		return nil, err
	}
	return c, nil
}

// Delete удаляет категорию без подкатегорий. Товары остаются без категории.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var children int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id=$1`, id).Scan(&children); err != nil {
		return err
	}
	if children > 0 {
		return ErrHasChildren
	}

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
