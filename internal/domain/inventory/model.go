package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/units"
)

type MoveType string

const (
	MoveIn  MoveType = "in"
	MoveOut MoveType = "out"
)

func (t MoveType) Valid() bool { return t == MoveIn || t == MoveOut }

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidType       = errors.New("transaction type must be in or out")
	ErrProductNotFound   = errors.New("product not found")
)

// Transaction is a stock movement of one product.
type Transaction struct {
	ID               int64
	ProductID        int64
	ProductName      string
	Type             MoveType
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	TotalValue       decimal.Decimal
	ReferenceNo      string
	CustomerSupplier string
	Date             time.Time
	Notes            string
	CreatedAt        time.Time
}

type NewTransaction struct {
	ProductID        int64
	Type             MoveType
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	ReferenceNo      string // uuid, если пусто
	CustomerSupplier string
	Date             time.Time // сегодня, если нулевая
	Notes            string
}

// Validate checks the request, fills defaults and brings quantity and price
// to the stored scale.
func (n *NewTransaction) Validate(now time.Time) error {
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	n.Quantity = units.RoundQuantity(n.Quantity)
	n.UnitPrice = n.UnitPrice.Round(units.Scale)
	if !n.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if n.UnitPrice.IsNegative() {
		return errors.New("unit price must be >= 0")
	}
	if n.ReferenceNo == "" {
		n.ReferenceNo = NewReference()
	}
	if n.Date.IsZero() {
		n.Date = now
	}
	return nil
}

func (n NewTransaction) TotalValue() decimal.Decimal {
	return n.Quantity.Mul(n.UnitPrice).Round(units.Scale)
}

// delta is the signed change applied to the product quantity.
func (n NewTransaction) delta() decimal.Decimal {
	if n.Type == MoveOut {
		return n.Quantity.Neg()
	}
	return n.Quantity
}

type ListFilter struct {
	ProductID int64
	Type      MoveType
	Limit     int
}
