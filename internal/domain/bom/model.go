package bom

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/products"
)

var (
	ErrSelfReference   = errors.New("product cannot be its own material")
	ErrDuplicateEdge   = errors.New("material already present in bill of materials")
	ErrInvalidQuantity = errors.New("quantity_required must be > 0")
	ErrNotFound        = errors.New("bom item not found")
)

// Edge is one direct BOM row: product_id needs quantity of material_id, in unit.
type Edge struct {
	ID         int64
	ProductID  int64
	MaterialID int64
	Quantity   decimal.Decimal
	Unit       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line is an expanded BOM line. Lines are computed per request and never stored.
type Line struct {
	MaterialID   int64
	MaterialName string
	MaterialSKU  string
	Quantity     decimal.Decimal
	Unit         string // unit the quantity is expressed in
	MaterialUnit string // native unit of the material
	UnitPrice    decimal.Decimal
	CurrentStock decimal.Decimal
	ItemCost     decimal.Decimal

	ShippingCost      decimal.NullDecimal
	TotalWithShipping decimal.NullDecimal
}

// MaterialStore is satisfied by *products.Repo.
type MaterialStore interface {
	GetByID(ctx context.Context, id int64) (*products.Product, error)
}

// EdgeStore returns the direct edges of a product, ordered deterministically.
type EdgeStore interface {
	ListByProduct(ctx context.Context, productID int64) ([]Edge, error)
}
