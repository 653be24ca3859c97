package http

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// shippingCost reads the optional lump shipping cost; anything unparsable counts as zero.
func shippingCost(r *http.Request) decimal.Decimal {
	raw := strings.TrimSpace(r.URL.Query().Get("shipping_cost"))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return decimal.Zero
	}
	return d
}

// computeBOM resolves the lines requested by product_id, expand and shipping_cost.
func (a *api) computeBOM(r *http.Request) (lines []bom.Line, productID int64, withShipping bool, err error) {
	productID, err = queryID(r, "product_id", true)
	if err != nil {
		return nil, 0, false, err
	}
	expand := queryBool(r, "expand")
	if expand {
		lines, err = a.Engine.Expand(r.Context(), productID)
	} else {
		lines, err = a.Engine.Direct(r.Context(), productID)
	}
	if err != nil {
		return nil, 0, false, err
	}
	a.Metrics.ObserveBOM(expand, len(lines))

	if ship := shippingCost(r); ship.IsPositive() {
		lines = bom.AllocateShipping(lines, ship)
		withShipping = true
	}
	return lines, productID, withShipping, nil
}

func (a *api) getBOM(w http.ResponseWriter, r *http.Request) {
	lines, _, withShipping, err := a.computeBOM(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBOM(lines, withShipping))
}

func (a *api) exportBOM(w http.ResponseWriter, r *http.Request) {
	lines, productID, _, err := a.computeBOM(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := bom.WriteXLSX(&buf, lines); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bom_%d.xlsx"`, productID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type createEdgeRequest struct {
	ProductID        int64           `json:"product_id"`
	MaterialID       int64           `json:"material_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Unit             string          `json:"unit"`
}

func (a *api) createEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.ProductID <= 0 || req.MaterialID <= 0 {
		a.fail(w, r, badRequestf("product_id and material_id are required"))
		return
	}
	e, err := a.Edges.Create(r.Context(), req.ProductID, req.MaterialID, req.QuantityRequired, req.Unit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("bom item created", "id", e.ID, "product_id", e.ProductID, "material_id", e.MaterialID)
	writeJSON(w, http.StatusCreated, toEdge(*e))
}

type updateEdgeRequest struct {
	QuantityRequired decimal.Decimal `json:"quantity_required"`
}

func (a *api) updateEdge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req updateEdgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	e, err := a.Edges.UpdateQuantity(r.Context(), id, req.QuantityRequired)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEdge(*e))
}

func (a *api) deleteEdge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Edges.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) deleteProductBOM(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	n, err := a.Edges.DeleteByProduct(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("product bom deleted", "product_id", id, "deleted", n)
	writeJSON(w, http.StatusOK, map[string]any{"deleted_count": n})
}

const maxUpload = 10 << 20

// uploadedFile returns the spreadsheet either from a multipart "file" field or the raw body.
func uploadedFile(w http.ResponseWriter, r *http.Request) (io.Reader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return nil, badRequestf("invalid upload: %v", err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, badRequestf("file field is required")
	}
	return f, nil
}

type importResponse struct {
	Created int            `json:"created"`
	Items   []edgeDTO      `json:"items"`
	Skipped []bom.RowError `json:"skipped"`
}

func (a *api) importBOM(w http.ResponseWriter, r *http.Request) {
	productID, err := queryID(r, "product_id", true)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Products.GetByID(r.Context(), productID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if p == nil {
		a.fail(w, r, fmt.Errorf("product %d: %w", productID, errNotFound))
		return
	}

	src, err := uploadedFile(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rows, bad, err := bom.ReadXLSX(src)
	if err != nil {
		a.fail(w, r, badRequestf("%v", err))
		return
	}

	res, err := bom.Import(r.Context(), a.Products, a.Edges, productID, rows)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	out := importResponse{
		Created: len(res.Created),
		Items:   make([]edgeDTO, 0, len(res.Created)),
		Skipped: append(bad, res.Skipped...),
	}
	for _, e := range res.Created {
		out.Items = append(out.Items, toEdge(e))
	}
	if out.Skipped == nil {
		out.Skipped = []bom.RowError{}
	}
	a.Log.Info("bom imported", "product_id", productID, "created", out.Created, "skipped", len(out.Skipped))
	writeJSON(w, http.StatusOK, out)
}
