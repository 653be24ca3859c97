package production

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Open reports whether the plan can still be worked on.
func (s Status) Open() bool { return s == StatusPending || s == StatusInProgress }

var (
	ErrNotFound        = errors.New("production plan not found")
	ErrInvalidQuantity = errors.New("plan quantity must be > 0")
	ErrInvalidStatus   = errors.New("invalid plan status")
	ErrClosed          = errors.New("production plan is already closed")
	ErrShortage        = errors.New("not enough materials in stock")
	ErrNoBOM           = errors.New("product has no bill of materials")
)

type Plan struct {
	ID               int64
	ProductID        int64
	ProductName      string
	Quantity         decimal.Decimal
	ProducedQuantity decimal.Decimal
	ScheduledDate    time.Time
	Status           Status
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type NewPlan struct {
	ProductID     int64
	Quantity      decimal.Decimal
	ScheduledDate time.Time
	Notes         string
}

// Requirement is one material needed to fulfil a plan, expressed in the
// material's own unit so it can be compared with stock.
type Requirement struct {
	MaterialID   int64
	MaterialName string
	MaterialSKU  string
	Unit         string
	UnitPrice    decimal.Decimal
	Required     decimal.Decimal
	CurrentStock decimal.Decimal
	Shortage     decimal.Decimal
	Cost         decimal.Decimal
}

type Requirements struct {
	Plan      Plan
	Items     []Requirement
	TotalCost decimal.Decimal
}

// HasShortage reports whether any material is short.
func (r Requirements) HasShortage() bool {
	for _, it := range r.Items {
		if it.Shortage.IsPositive() {
			return true
		}
	}
	return false
}
