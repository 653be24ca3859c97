package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/production"
)

func (a *api) listPlans(w http.ResponseWriter, r *http.Request) {
	status := production.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		a.fail(w, r, production.ErrInvalidStatus)
		return
	}
	list, err := a.Plans.List(r.Context(), status)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]planDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toPlan(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type createPlanRequest struct {
	ProductID     int64           `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	ScheduledDate string          `json:"scheduled_date"`
	Notes         string          `json:"notes"`
}

func (a *api) createPlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if req.ProductID <= 0 {
		a.fail(w, r, badRequestf("product_id is required"))
		return
	}
	date, err := parseDate("scheduled_date", req.ScheduledDate)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if date.IsZero() {
		date = time.Now()
	}
	p, err := a.Plans.Create(r.Context(), production.NewPlan{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		ScheduledDate: date,
		Notes:         req.Notes,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.Log.Info("production plan created", "id", p.ID, "product_id", p.ProductID)
	writeJSON(w, http.StatusCreated, toPlan(*p))
}

func (a *api) getPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Plans.GetByID(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if p == nil {
		a.fail(w, r, fmt.Errorf("plan %d: %w", id, production.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, toPlan(*p))
}

type planStatusRequest struct {
	Status string `json:"status"`
}

func (a *api) updatePlanStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req planStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	// завершение только через /complete, там списываются материалы
	if production.Status(req.Status) == production.StatusCompleted {
		a.fail(w, r, badRequestf("use POST /production/%d/complete to complete a plan", id))
		return
	}
	p, err := a.Plans.UpdateStatus(r.Context(), id, production.Status(req.Status))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlan(*p))
}

func (a *api) deletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.Plans.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) planRequirements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	req, err := a.Production.Requirements(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequirements(*req))
}

func (a *api) completePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	txs, err := a.Production.Complete(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"plan_id":      id,
		"transactions": toTransactions(txs),
	})
}
