package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
)

// parseDate accepts YYYY-MM-DD; an empty value yields the zero time.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, badRequestf("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func (a *api) listTransactions(w http.ResponseWriter, r *http.Request) {
	productID, err := queryID(r, "product_id", false)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	typ := inventory.MoveType(r.URL.Query().Get("type"))
	if typ != "" && !typ.Valid() {
		a.fail(w, r, inventory.ErrInvalidType)
		return
	}
	list, err := a.Transactions.List(r.Context(), inventory.ListFilter{
		ProductID: productID,
		Type:      typ,
		Limit:     queryInt(r, "limit", 100),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactions(list))
}

type createTransactionRequest struct {
	ProductID        int64           `json:"product_id"`
	Type             string          `json:"transaction_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReferenceNo      string          `json:"reference_no"`
	CustomerSupplier string          `json:"customer_supplier"`
	Date             string          `json:"transaction_date"`
	Notes            string          `json:"notes"`
}

func (a *api) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.ProductID <= 0 {
		a.fail(w, r, badRequestf("product_id is required"))
		return
	}
	date, err := parseDate("transaction_date", req.Date)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	t, err := a.Stock.Record(r.Context(), inventory.NewTransaction{
		ProductID:        req.ProductID,
		Type:             inventory.MoveType(strings.ToLower(strings.TrimSpace(req.Type))),
		Quantity:         req.Quantity,
		UnitPrice:        req.UnitPrice,
		ReferenceNo:      strings.TrimSpace(req.ReferenceNo),
		CustomerSupplier: req.CustomerSupplier,
		Date:             date,
		Notes:            req.Notes,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransaction(*t))
}
