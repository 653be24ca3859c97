package products

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateSKU = errors.New("sku already exists")
	ErrInUse        = errors.New("product is referenced by a bill of materials or stock history")
	ErrInvalid      = errors.New("invalid product")
)

// Product is both a sellable item and a BOM material.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	CategoryID  *int64
	Category    string // имя категории (для отображения)
	Unit        string
	Price       decimal.Decimal // за единицу Unit
	Quantity    decimal.Decimal
	MinStock    decimal.NullDecimal
	MaxStock    decimal.NullDecimal
	Description string
	IsComposite bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NewProduct struct {
	SKU         string
	Name        string
	CategoryID  *int64
	Unit        string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	MinStock    decimal.NullDecimal
	MaxStock    decimal.NullDecimal
	Description string
}

type ListFilter struct {
	Search     string
	CategoryID int64
	Page       int
	PerPage    int
}

type Page struct {
	Products   []Product
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}
