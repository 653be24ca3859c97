package inventory

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/products"
)

type AlertLevel string

const (
	AlertZero AlertLevel = "zero"
	AlertLow  AlertLevel = "low"
)

type Alert struct {
	ProductID int64
	SKU       string
	Name      string
	Unit      string
	Quantity  decimal.Decimal
	MinStock  decimal.NullDecimal
	Level     AlertLevel
}

// AlertFor reports whether the product needs restocking. Zero stock takes
// precedence over the low-stock threshold.
func AlertFor(p products.Product) (Alert, bool) {
	a := Alert{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Unit:      p.Unit,
		Quantity:  p.Quantity,
		MinStock:  p.MinStock,
	}
	switch {
	case p.Quantity.IsZero():
		a.Level = AlertZero
	case p.MinStock.Valid && p.MinStock.Decimal.IsPositive() && p.Quantity.LessThanOrEqual(p.MinStock.Decimal):
		a.Level = AlertLow
	default:
		return Alert{}, false
	}
	return a, true
}

// Alerts filters products down to those that need attention, keeping order.
func Alerts(list []products.Product) []Alert {
	var out []Alert
	for _, p := range list {
		if a, ok := AlertFor(p); ok {
			out = append(out, a)
		}
	}
	return out
}

// Notifier delivers stock alerts somewhere a person will see them.
type Notifier interface {
	NotifyStock(ctx context.Context, alerts []Alert) error
}

type NopNotifier struct{}

func (NopNotifier) NotifyStock(context.Context, []Alert) error { return nil }

type Recorder interface {
	Record(ctx context.Context, in NewTransaction) (*Transaction, error)
}

type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (*products.Product, error)
}

// Service records transactions and pushes alerts for products whose stock
// dropped to or below their threshold.
type Service struct {
	tx       Recorder
	products ProductGetter
	notifier Notifier
	log      *slog.Logger
	timeout  time.Duration
}

func NewService(tx Recorder, products ProductGetter, notifier Notifier, log *slog.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{tx: tx, products: products, notifier: notifier, log: log, timeout: 10 * time.Second}
}

func (s *Service) Record(ctx context.Context, in NewTransaction) (*Transaction, error) {
	t, err := s.tx.Record(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("stock transaction recorded",
		"id", t.ID, "product_id", t.ProductID, "type", t.Type, "quantity", t.Quantity.String(), "reference_no", t.ReferenceNo)
	if t.Type == MoveOut {
		s.CheckAlerts(ctx, t.ProductID)
	}
	return t, nil
}

// CheckAlerts looks the products up again and notifies about those needing
// restock. Failures are logged; the stock movement has already happened.
func (s *Service) CheckAlerts(ctx context.Context, productIDs ...int64) {
	var alerts []Alert
	for _, id := range productIDs {
		p, err := s.products.GetByID(ctx, id)
		if err != nil {
			s.log.Warn("alert check: load product", "product_id", id, "err", err)
			continue
		}
		if p == nil {
			continue
		}
		if a, ok := AlertFor(*p); ok {
			alerts = append(alerts, a)
		}
	}
	if len(alerts) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.notifier.NotifyStock(ctx, alerts); err != nil {
		s.log.Warn("stock alert not delivered", "alerts", len(alerts), "err", err)
	}
}
