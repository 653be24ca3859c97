package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
)

func (a *api) purchaseList(w http.ResponseWriter, r *http.Request) {
	list, err := a.Production.PurchaseList(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchases(list))
}

type stockCountRequest struct {
	Items []struct {
		ProductID      int64            `json:"product_id"`
		ActualQuantity *decimal.Decimal `json:"actual_quantity"`
	} `json:"items"`
}

func (a *api) stockCount(w http.ResponseWriter, r *http.Request) {
	var req stockCountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if len(req.Items) == 0 {
		a.fail(w, r, badRequestf("items must not be empty"))
		return
	}
	counts := make([]inventory.Count, 0, len(req.Items))
	for i, it := range req.Items {
		if it.ProductID <= 0 || it.ActualQuantity == nil {
			a.fail(w, r, badRequestf("item %d needs product_id and actual_quantity", i+1))
			return
		}
		counts = append(counts, inventory.Count{ProductID: it.ProductID, Actual: *it.ActualQuantity})
	}
	res, err := a.Counts.Reconcile(r.Context(), counts)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("stock count posted", "products", len(res))
	writeJSON(w, http.StatusOK, map[string]any{"results": toCountResults(res)})
}
