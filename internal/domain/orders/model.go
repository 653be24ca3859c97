package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/units"
)

type Type string

const (
	TypePurchase Type = "purchase"
	TypeSales    Type = "sales"
)

func (t Type) Valid() bool { return t == TypePurchase || t == TypeSales }

// Move is the stock direction an order of this type posts on completion.
func (t Type) Move() inventory.MoveType {
	if t == TypeSales {
		return inventory.MoveOut
	}
	return inventory.MoveIn
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

var (
	ErrNotFound        = errors.New("order not found")
	ErrInvalidType     = errors.New("order type must be purchase or sales")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrInvalid         = errors.New("invalid order")
	ErrClosed          = errors.New("order is already completed or cancelled")
	ErrDuplicateNumber = errors.New("order number already exists")
)

type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64 // 0 для строк без товара
	ProductName string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Unit        string
	Notes       string
}

type Order struct {
	ID               int64
	Number           string
	Type             Type
	CustomerSupplier string
	Date             time.Time
	TotalAmount      decimal.Decimal
	ShippingCost     decimal.Decimal
	Status           Status
	Notes            string
	Items            []Item
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewItem struct {
	ProductID   int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Unit        string // единица товара, если пусто
	Notes       string
}

// TotalPrice is quantity times unit price at the stored scale.
func (n NewItem) TotalPrice() decimal.Decimal {
	return n.Quantity.Mul(n.UnitPrice).Round(units.Scale)
}

func (n *NewItem) validate(i int) error {
	n.Quantity = units.RoundQuantity(n.Quantity)
	n.UnitPrice = n.UnitPrice.Round(units.Scale)
	if !n.Quantity.IsPositive() {
		return fmt.Errorf("%w: item %d quantity must be > 0", ErrInvalid, i+1)
	}
	if n.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: item %d unit price must be >= 0", ErrInvalid, i+1)
	}
	if n.ProductID < 0 {
		return fmt.Errorf("%w: item %d product id", ErrInvalid, i+1)
	}
	if n.ProductID == 0 && strings.TrimSpace(n.Description) == "" {
		return fmt.Errorf("%w: item %d needs a product or a description", ErrInvalid, i+1)
	}
	return nil
}

func validateItems(items []NewItem) error {
	for i := range items {
		if err := items[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

// ItemsTotal sums the line totals.
func ItemsTotal(items []NewItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice())
	}
	return total
}

type NewOrder struct {
	Number           string // генерируется, если пусто
	Type             Type
	CustomerSupplier string
	Date             time.Time // сегодня, если нулевая
	ShippingCost     decimal.Decimal
	Notes            string
	Items            []NewItem
}

// Validate checks the order and fills the number and date.
func (n *NewOrder) Validate(now time.Time) error {
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	n.CustomerSupplier = strings.TrimSpace(n.CustomerSupplier)
	if n.CustomerSupplier == "" {
		return fmt.Errorf("%w: customer_supplier is required", ErrInvalid)
	}
	if n.ShippingCost.IsNegative() {
		return fmt.Errorf("%w: shipping cost must be >= 0", ErrInvalid)
	}
	n.ShippingCost = n.ShippingCost.Round(units.Scale)
	if err := validateItems(n.Items); err != nil {
		return err
	}
	if n.Number = strings.TrimSpace(n.Number); n.Number == "" {
		n.Number = NewNumber(now)
	}
	if n.Date.IsZero() {
		n.Date = now
	}
	return nil
}

// Total is the items total plus shipping.
func (n NewOrder) Total() decimal.Decimal { return ItemsTotal(n.Items).Add(n.ShippingCost) }

// Patch changes a pending order. Nil fields are left as they are; non-nil
// Items replaces every line.
type Patch struct {
	Type             *Type
	CustomerSupplier *string
	Date             *time.Time
	ShippingCost     *decimal.Decimal
	Notes            *string
	Items            *[]NewItem
}

func (p *Patch) Validate() error {
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.CustomerSupplier != nil {
		s := strings.TrimSpace(*p.CustomerSupplier)
		if s == "" {
			return fmt.Errorf("%w: customer_supplier is required", ErrInvalid)
		}
		p.CustomerSupplier = &s
	}
	if p.ShippingCost != nil {
		if p.ShippingCost.IsNegative() {
			return fmt.Errorf("%w: shipping cost must be >= 0", ErrInvalid)
		}
		c := p.ShippingCost.Round(units.Scale)
		p.ShippingCost = &c
	}
	if p.Items != nil {
		return validateItems(*p.Items)
	}
	return nil
}

// NewNumber returns an order number such as "ORD20240501100000A1B2".
func NewNumber(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD" + now.Format("20060102150405") + strings.ToUpper(id[:4])
}

type ListFilter struct {
	Type    Type
	Status  Status
	Page    int
	PerPage int
}

type Page struct {
	Orders     []Order
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// Stats counts orders and sums their amounts.
type Stats struct {
	Total    int
	ByType   map[Type]int
	ByStatus map[Status]int
	Amount   decimal.Decimal
	Amounts  map[Type]decimal.Decimal
}

func NewStats() Stats {
	return Stats{
		ByType:   map[Type]int{TypePurchase: 0, TypeSales: 0},
		ByStatus: map[Status]int{StatusPending: 0, StatusCompleted: 0, StatusCancelled: 0},
		Amount:   decimal.Zero,
		Amounts:  map[Type]decimal.Decimal{TypePurchase: decimal.Zero, TypeSales: decimal.Zero},
	}
}

// Add folds a group of n orders with the given type and status into the stats.
func (s *Stats) Add(t Type, st Status, n int, amount decimal.Decimal) {
	s.Total += n
	s.ByType[t] += n
	s.ByStatus[st] += n
	s.Amount = s.Amount.Add(amount)
	s.Amounts[t] = s.Amounts[t].Add(amount)
}
