package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/products"
)

func (a *api) listProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "category_id", false)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	perPage := queryInt(r, "per_page", 50)
	if perPage > 200 {
		perPage = 200
	}
	page, err := a.Products.List(r.Context(), products.ListFilter{
		Search:     r.URL.Query().Get("search"),
		CategoryID: categoryID,
		Page:       queryInt(r, "page", 1),
		PerPage:    perPage,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := productPageDTO{
		Products:   make([]productDTO, 0, len(page.Products)),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
	for _, p := range page.Products {
		out.Products = append(out.Products, toProduct(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type createProductRequest struct {
	SKU         string              `json:"sku"`
	Name        string              `json:"name"`
	CategoryID  *int64              `json:"category_id"`
	Unit        string              `json:"unit"`
	Price       decimal.Decimal     `json:"price"`
	Quantity    decimal.Decimal     `json:"quantity"`
	MinStock    decimal.NullDecimal `json:"min_stock"`
	MaxStock    decimal.NullDecimal `json:"max_stock"`
	Description string              `json:"description"`
}

func (a *api) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.SKU) == "" || strings.TrimSpace(req.Name) == "" {
		a.fail(w, r, badRequestf("sku and name are required"))
		return
	}
	if req.Quantity.IsNegative() {
		a.fail(w, r, badRequestf("quantity must be >= 0"))
		return
	}
	p, err := a.Products.Create(r.Context(), products.NewProduct{
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		CategoryID:  req.CategoryID,
		Unit:        strings.TrimSpace(req.Unit),
		Price:       req.Price,
		Quantity:    req.Quantity,
		MinStock:    req.MinStock,
		MaxStock:    req.MaxStock,
		Description: req.Description,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("product created", "id", p.ID, "sku", p.SKU)
	writeJSON(w, http.StatusCreated, toProduct(*p))
}

func (a *api) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Products.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if p == nil {
		a.fail(w, r, fmt.Errorf("product %d: %w", id, errNotFound))
		return
	}
	writeJSON(w, http.StatusOK, toProduct(*p))
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (a *api) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req updatePriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Products.UpdatePrice(r.Context(), id, req.Price)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if p == nil {
		a.fail(w, r, fmt.Errorf("product %d: %w", id, errNotFound))
		return
	}
	writeJSON(w, http.StatusOK, toProduct(*p))
}

func (a *api) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Products.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) listAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := a.Products.ListForAlerts(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	alerts := inventory.Alerts(list)
	out := make([]alertDTO, 0, len(alerts))
	for _, al := range alerts {
		out = append(out, toAlert(al))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) listCategories(w http.ResponseWriter, r *http.Request) {
	if queryBool(r, "tree") {
		nodes, err := a.Categories.Tree(r.Context())
		if err != nil {
			a.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toCategoryTree(nodes))
		return
	}
	list, err := a.Categories.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]categoryDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toCategory(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type categoryRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

func (a *api) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.Categories.Create(r.Context(), req.Name, req.ParentID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategory(*c))
}

func (a *api) renameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.Categories.Rename(r.Context(), id, req.Name)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategory(*c))
}

func (a *api) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Categories.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
