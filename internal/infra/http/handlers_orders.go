package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/orders"
)

type orderItemRequest struct {
	ProductID   int64           `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit"`
	Notes       string          `json:"notes"`
}

func toNewItems(in []orderItemRequest) []orders.NewItem {
	out := make([]orders.NewItem, 0, len(in))
	for _, it := range in {
		out = append(out, orders.NewItem{
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	return out
}

func orderType(raw string) orders.Type {
	return orders.Type(strings.ToLower(strings.TrimSpace(raw)))
}

func (a *api) listOrders(w http.ResponseWriter, r *http.Request) {
	typ := orderType(r.URL.Query().Get("order_type"))
	if typ != "" && !typ.Valid() {
		a.fail(w, r, orders.ErrInvalidType)
		return
	}
	status := orders.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		a.fail(w, r, orders.ErrInvalidStatus)
		return
	}
	perPage := queryInt(r, "per_page", 20)
	if perPage > 100 {
		perPage = 100
	}
	page, err := a.Orders.List(r.Context(), orders.ListFilter{
		Type:    typ,
		Status:  status,
		Page:    queryInt(r, "page", 1),
		PerPage: perPage,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := orderPageDTO{
		Orders:     make([]orderDTO, 0, len(page.Orders)),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
	for _, o := range page.Orders {
		out.Orders = append(out.Orders, toOrder(o))
	}
	writeJSON(w, http.StatusOK, out)
}

type createOrderRequest struct {
	OrderNumber      string             `json:"order_number"`
	OrderType        string             `json:"order_type"`
	CustomerSupplier string             `json:"customer_supplier"`
	OrderDate        string             `json:"order_date"`
	ShippingCost     decimal.Decimal    `json:"shipping_cost"`
	Notes            string             `json:"notes"`
	Items            []orderItemRequest `json:"items"`
}

func (a *api) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	date, err := parseDate("order_date", req.OrderDate)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	o, err := a.Orders.Create(r.Context(), orders.NewOrder{
		Number:           req.OrderNumber,
		Type:             orderType(req.OrderType),
		CustomerSupplier: req.CustomerSupplier,
		Date:             date,
		ShippingCost:     req.ShippingCost,
		Notes:            req.Notes,
		Items:            toNewItems(req.Items),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("order created", "id", o.ID, "number", o.Number, "type", string(o.Type))
	w.Header().Set("Location", fmt.Sprintf("/orders/%d", o.ID))
	writeJSON(w, http.StatusCreated, toOrder(*o))
}

func (a *api) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	o, err := a.Orders.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if o == nil {
		a.fail(w, r, fmt.Errorf("order %d: %w", id, orders.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, toOrder(*o))
}

// Absent fields stay unchanged.
type updateOrderRequest struct {
	OrderType        *string             `json:"order_type"`
	CustomerSupplier *string             `json:"customer_supplier"`
	OrderDate        *string             `json:"order_date"`
	ShippingCost     *decimal.Decimal    `json:"shipping_cost"`
	Notes            *string             `json:"notes"`
	Items            *[]orderItemRequest `json:"items"`
	Status           *string             `json:"status"`
}

func (a *api) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req updateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	// статус меняется только через /complete и /cancel, там проводится склад
	if req.Status != nil {
		a.fail(w, r, badRequestf("use POST /orders/%d/complete or /cancel to change status", id))
		return
	}

	p := orders.Patch{
		CustomerSupplier: req.CustomerSupplier,
		ShippingCost:     req.ShippingCost,
		Notes:            req.Notes,
	}
	if req.OrderType != nil {
		t := orderType(*req.OrderType)
		p.Type = &t
	}
	if req.OrderDate != nil {
		date, err := parseDate("order_date", *req.OrderDate)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if !date.IsZero() {
			p.Date = &date
		}
	}
	if req.Items != nil {
		items := toNewItems(*req.Items)
		p.Items = &items
	}

	o, err := a.Orders.Update(r.Context(), id, p)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrder(*o))
}

func (a *api) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Orders.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) completeOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	o, txs, err := a.Ordering.Complete(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order":        toOrder(*o),
		"transactions": toTransactions(txs),
	})
}

func (a *api) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	o, err := a.Orders.Cancel(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("order cancelled", "id", id)
	writeJSON(w, http.StatusOK, toOrder(*o))
}

func (a *api) orderStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Orders.Stats(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderStats(st))
}
