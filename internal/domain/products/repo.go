package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/units"
)

const selectProduct = `
	SELECT p.id, p.sku, p.name, p.category_id, COALESCE(c.name,''), p.unit, p.price, p.quantity,
	       p.min_stock, p.max_stock, p.description, p.is_composite, p.created_at, p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.CategoryID,
		&p.Category,
		&p.Unit,
		&p.Price,
		&p.Quantity,
		&p.MinStock,
		&p.MaxStock,
		&p.Description,
		&p.IsComposite,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, in NewProduct) (*Product, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: sku and name are required", ErrInvalid)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrInvalid)
	}
	if in.Unit == "" {
		in.Unit = units.Default
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (sku, name, category_id, unit, price, quantity, min_stock, max_stock, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`, in.SKU, in.Name, in.CategoryID, in.Unit, in.Price, in.Quantity, in.MinStock, in.MaxStock, in.Description).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSKU
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID возвращает (nil, nil), если продукта нет.
func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *Repo) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProduct+` WHERE p.sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// List ищет по части названия/SKU без учёта регистра, с пагинацией.
func (r *Repo) List(ctx context.Context, f ListFilter) (Page, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = 50
	}

	where := " WHERE 1=1"
	var args []any
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+strings.ToLower(s)+"%")
		where += fmt.Sprintf(" AND (LOWER(p.name) LIKE $%d OR LOWER(p.sku) LIKE $%d)", len(args), len(args))
	}
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		where += fmt.Sprintf(" AND p.category_id = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	q := selectProduct + where + fmt.Sprintf(" ORDER BY p.name LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	out := Page{Page: f.Page, PerPage: f.PerPage, Total: total}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return Page{}, err
		}
		out.Products = append(out.Products, *p)
	}
	out.TotalPages = (total + f.PerPage - 1) / f.PerPage
	return out, rows.Err()
}

// ListForAlerts возвращает товары с нулевым остатком или ниже min_stock.
func (r *Repo) ListForAlerts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, selectProduct+`
		WHERE p.quantity = 0 OR (p.min_stock > 0 AND p.quantity <= p.min_stock)
		ORDER BY p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*Product, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrInvalid)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE products SET price=$2, updated_at=now() WHERE id=$1`, id, price)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// Delete отказывает, пока продукт участвует в BOM (как изделие или как материал).
func (r *Repo) Delete(ctx context.Context, id int64) error {
	var used bool
	if err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM bom WHERE product_id = $1 OR material_id = $1)
	`, id).Scan(&used); err != nil {
		return err
	}
	if used {
		return ErrInUse
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrInUse
	}
	return err
}
