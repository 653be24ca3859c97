package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/catalog"
	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/orders"
	"github.com/Aurora209/inventory-system/internal/domain/production"
	"github.com/Aurora209/inventory-system/internal/domain/products"
)

// Decimals leave the API as JSON numbers.

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }

func nullNum(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

const dateLayout = "2006-01-02"

type lineDTO struct {
	MaterialID            int64    `json:"material_id"`
	MaterialName          string   `json:"material_name"`
	MaterialSKU           string   `json:"material_sku"`
	QuantityRequired      float64  `json:"quantity_required"`
	Unit                  string   `json:"unit"`
	MaterialUnit          string   `json:"material_unit"`
	CurrentStock          float64  `json:"current_stock"`
	MaterialPrice         float64  `json:"material_price"`
	ItemCost              float64  `json:"item_cost"`
	ShippingCost          *float64 `json:"shipping_cost,omitempty"`
	TotalCostWithShipping *float64 `json:"total_cost_with_shipping,omitempty"`
}

type bomDTO struct {
	Items     []lineDTO `json:"items"`
	TotalCost float64   `json:"total_cost"`
}

func toBOM(lines []bom.Line, withShipping bool) bomDTO {
	out := bomDTO{Items: make([]lineDTO, 0, len(lines))}
	for _, l := range lines {
		out.Items = append(out.Items, lineDTO{
			MaterialID:            l.MaterialID,
			MaterialName:          l.MaterialName,
			MaterialSKU:           l.MaterialSKU,
			QuantityRequired:      num(l.Quantity),
			Unit:                  l.Unit,
			MaterialUnit:          l.MaterialUnit,
			CurrentStock:          num(l.CurrentStock),
			MaterialPrice:         num(l.UnitPrice),
			ItemCost:              num(l.ItemCost),
			ShippingCost:          nullNum(l.ShippingCost),
			TotalCostWithShipping: nullNum(l.TotalWithShipping),
		})
	}
	if withShipping {
		out.TotalCost = num(bom.TotalWithShipping(lines))
	} else {
		out.TotalCost = num(bom.TotalCost(lines))
	}
	return out
}

type edgeDTO struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id"`
	MaterialID       int64     `json:"material_id"`
	QuantityRequired float64   `json:"quantity_required"`
	Unit             string    `json:"unit"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toEdge(e bom.Edge) edgeDTO {
	return edgeDTO{
		ID:               e.ID,
		ProductID:        e.ProductID,
		MaterialID:       e.MaterialID,
		QuantityRequired: num(e.Quantity),
		Unit:             e.Unit,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

type productDTO struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	CategoryID  *int64    `json:"category_id"`
	Category    string    `json:"category_name"`
	Unit        string    `json:"unit"`
	Price       float64   `json:"price"`
	Quantity    float64   `json:"quantity"`
	MinStock    *float64  `json:"min_stock"`
	MaxStock    *float64  `json:"max_stock"`
	Description string    `json:"description"`
	IsComposite bool      `json:"is_composite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProduct(p products.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		CategoryID:  p.CategoryID,
		Category:    p.Category,
		Unit:        p.Unit,
		Price:       num(p.Price),
		Quantity:    num(p.Quantity),
		MinStock:    nullNum(p.MinStock),
		MaxStock:    nullNum(p.MaxStock),
		Description: p.Description,
		IsComposite: p.IsComposite,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type productPageDTO struct {
	Products   []productDTO `json:"products"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
	TotalPages int          `json:"total_pages"`
}

type categoryDTO struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	ParentID  *int64        `json:"parent_id"`
	Level     int           `json:"level"`
	CreatedAt time.Time     `json:"created_at"`
	Children  []categoryDTO `json:"children,omitempty"`
}

func toCategory(c catalog.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name, ParentID: c.ParentID, Level: c.Level, CreatedAt: c.CreatedAt}
}

func toCategoryTree(nodes []catalog.Node) []categoryDTO {
	out := make([]categoryDTO, 0, len(nodes))
	for _, n := range nodes {
		c := toCategory(n.Category)
		if len(n.Children) > 0 {
			c.Children = toCategoryTree(n.Children)
		}
		out = append(out, c)
	}
	return out
}

type transactionDTO struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id"`
	ProductName      string    `json:"product_name,omitempty"`
	Type             string    `json:"transaction_type"`
	Quantity         float64   `json:"quantity"`
	UnitPrice        float64   `json:"unit_price"`
	TotalValue       float64   `json:"total_value"`
	ReferenceNo      string    `json:"reference_no"`
	CustomerSupplier string    `json:"customer_supplier"`
	Date             string    `json:"transaction_date"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

func toTransaction(t inventory.Transaction) transactionDTO {
	return transactionDTO{
		ID:               t.ID,
		ProductID:        t.ProductID,
		ProductName:      t.ProductName,
		Type:             string(t.Type),
		Quantity:         num(t.Quantity),
		UnitPrice:        num(t.UnitPrice),
		TotalValue:       num(t.TotalValue),
		ReferenceNo:      t.ReferenceNo,
		CustomerSupplier: t.CustomerSupplier,
		Date:             t.Date.Format(dateLayout),
		Notes:            t.Notes,
		CreatedAt:        t.CreatedAt,
	}
}

func toTransactions(list []inventory.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(list))
	for _, t := range list {
		out = append(out, toTransaction(t))
	}
	return out
}

type alertDTO struct {
	ProductID int64    `json:"product_id"`
	SKU       string   `json:"sku"`
	Name      string   `json:"name"`
	Unit      string   `json:"unit"`
	Quantity  float64  `json:"quantity"`
	MinStock  *float64 `json:"min_stock"`
	Level     string   `json:"level"`
}

func toAlert(a inventory.Alert) alertDTO {
	return alertDTO{
		ProductID: a.ProductID,
		SKU:       a.SKU,
		Name:      a.Name,
		Unit:      a.Unit,
		Quantity:  num(a.Quantity),
		MinStock:  nullNum(a.MinStock),
		Level:     string(a.Level),
	}
}

type planDTO struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id"`
	ProductName      string    `json:"product_name"`
	Quantity         float64   `json:"quantity"`
	ProducedQuantity float64   `json:"produced_quantity"`
	ScheduledDate    string    `json:"scheduled_date"`
	Status           string    `json:"status"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toPlan(p production.Plan) planDTO {
	return planDTO{
		ID:               p.ID,
		ProductID:        p.ProductID,
		ProductName:      p.ProductName,
		Quantity:         num(p.Quantity),
		ProducedQuantity: num(p.ProducedQuantity),
		ScheduledDate:    p.ScheduledDate.Format(dateLayout),
		Status:           string(p.Status),
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type requirementDTO struct {
	MaterialID   int64   `json:"material_id"`
	MaterialName string  `json:"material_name"`
	MaterialSKU  string  `json:"material_sku"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price"`
	Required     float64 `json:"required_quantity"`
	CurrentStock float64 `json:"current_stock"`
	Shortage     float64 `json:"shortage"`
	Cost         float64 `json:"cost"`
}

type requirementsDTO struct {
	Plan        planDTO          `json:"plan"`
	Items       []requirementDTO `json:"items"`
	TotalCost   float64          `json:"total_cost"`
	HasShortage bool             `json:"has_shortage"`
}

func toRequirements(r production.Requirements) requirementsDTO {
	out := requirementsDTO{
		Plan:        toPlan(r.Plan),
		Items:       make([]requirementDTO, 0, len(r.Items)),
		TotalCost:   num(r.TotalCost),
		HasShortage: r.HasShortage(),
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, requirementDTO{
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			MaterialSKU:  it.MaterialSKU,
			Unit:         it.Unit,
			UnitPrice:    num(it.UnitPrice),
			Required:     num(it.Required),
			CurrentStock: num(it.CurrentStock),
			Shortage:     num(it.Shortage),
			Cost:         num(it.Cost),
		})
	}
	return out
}

type purchaseDTO struct {
	MaterialID   int64   `json:"material_id"`
	MaterialName string  `json:"material_name"`
	MaterialSKU  string  `json:"material_sku"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price"`
	Required     float64 `json:"required_quantity"`
	CurrentStock float64 `json:"current_stock"`
	Shortage     float64 `json:"shortage"`
	Amount       float64 `json:"purchase_amount"`
	PlanIDs      []int64 `json:"plan_ids"`
}

func toPurchases(list []production.Purchase) []purchaseDTO {
	out := make([]purchaseDTO, 0, len(list))
	for _, p := range list {
		out = append(out, purchaseDTO{
			MaterialID:   p.MaterialID,
			MaterialName: p.MaterialName,
			MaterialSKU:  p.MaterialSKU,
			Unit:         p.Unit,
			UnitPrice:    num(p.UnitPrice),
			Required:     num(p.Required),
			CurrentStock: num(p.CurrentStock),
			Shortage:     num(p.Shortage),
			Amount:       num(p.Amount),
			PlanIDs:      p.PlanIDs,
		})
	}
	return out
}

type countResultDTO struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	System      float64         `json:"system_quantity"`
	Actual      float64         `json:"actual_quantity"`
	Difference  float64         `json:"difference"`
	Transaction *transactionDTO `json:"transaction"`
}

func toCountResults(list []inventory.CountResult) []countResultDTO {
	out := make([]countResultDTO, 0, len(list))
	for _, c := range list {
		dto := countResultDTO{
			ProductID:   c.ProductID,
			ProductName: c.ProductName,
			System:      num(c.System),
			Actual:      num(c.Actual),
			Difference:  num(c.Difference),
		}
		if c.Transaction != nil {
			t := toTransaction(*c.Transaction)
			dto.Transaction = &t
		}
		out = append(out, dto)
	}
	return out
}

type orderItemDTO struct {
	ID          int64   `json:"id"`
	ProductID   *int64  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	Unit        string  `json:"unit"`
	Notes       string  `json:"notes"`
}

type orderDTO struct {
	ID               int64          `json:"id"`
	OrderNumber      string         `json:"order_number"`
	OrderType        string         `json:"order_type"`
	CustomerSupplier string         `json:"customer_supplier"`
	OrderDate        string         `json:"order_date"`
	TotalAmount      float64        `json:"total_amount"`
	ShippingCost     float64        `json:"shipping_cost"`
	Status           string         `json:"status"`
	Notes            string         `json:"notes"`
	Items            []orderItemDTO `json:"items,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func toOrder(o orders.Order) orderDTO {
	out := orderDTO{
		ID:               o.ID,
		OrderNumber:      o.Number,
		OrderType:        string(o.Type),
		CustomerSupplier: o.CustomerSupplier,
		OrderDate:        o.Date.Format(dateLayout),
		TotalAmount:      num(o.TotalAmount),
		ShippingCost:     num(o.ShippingCost),
		Status:           string(o.Status),
		Notes:            o.Notes,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	for _, it := range o.Items {
		dto := orderItemDTO{
			ID:          it.ID,
			ProductName: it.ProductName,
			Description: it.Description,
			Quantity:    num(it.Quantity),
			UnitPrice:   num(it.UnitPrice),
			TotalPrice:  num(it.TotalPrice),
			Unit:        it.Unit,
			Notes:       it.Notes,
		}
		if it.ProductID > 0 {
			id := it.ProductID
			dto.ProductID = &id
		}
		out.Items = append(out.Items, dto)
	}
	return out
}

type orderPageDTO struct {
	Orders     []orderDTO `json:"orders"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}

type orderStatsDTO struct {
	TotalOrders     int     `json:"total_orders"`
	PurchaseOrders  int     `json:"purchase_orders"`
	SalesOrders     int     `json:"sales_orders"`
	PendingOrders   int     `json:"pending_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	TotalAmount     float64 `json:"total_amount"`
	PurchaseAmount  float64 `json:"purchase_amount"`
	SalesAmount     float64 `json:"sales_amount"`
}

func toOrderStats(s orders.Stats) orderStatsDTO {
	return orderStatsDTO{
		TotalOrders:     s.Total,
		PurchaseOrders:  s.ByType[orders.TypePurchase],
		SalesOrders:     s.ByType[orders.TypeSales],
		PendingOrders:   s.ByStatus[orders.StatusPending],
		CompletedOrders: s.ByStatus[orders.StatusCompleted],
		CancelledOrders: s.ByStatus[orders.StatusCancelled],
		TotalAmount:     num(s.Amount),
		PurchaseAmount:  num(s.Amounts[orders.TypePurchase]),
		SalesAmount:     num(s.Amounts[orders.TypeSales]),
	}
}
