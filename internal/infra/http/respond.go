package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/catalog"
	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/orders"
	"github.com/Aurora209/inventory-system/internal/domain/production"
	"github.com/Aurora209/inventory-system/internal/domain/products"
)

// badRequest marks errors caused by the request itself.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error { return badRequest{msg: fmt.Sprintf(format, args...)} }

var errNotFound = errors.New("not found")

type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func classify(err error) (int, string) {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, bom.ErrSelfReference),
		errors.Is(err, bom.ErrInvalidQuantity),
		errors.Is(err, products.ErrInvalid),
		errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, catalog.ErrTooDeep),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidType),
		errors.Is(err, inventory.ErrInvalidCount),
		errors.Is(err, production.ErrInvalidQuantity),
		errors.Is(err, production.ErrInvalidStatus),
		errors.Is(err, orders.ErrInvalid),
		errors.Is(err, orders.ErrInvalidType),
		errors.Is(err, orders.ErrInvalidStatus):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, errNotFound),
		errors.Is(err, bom.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, production.ErrNotFound),
		errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, bom.ErrDuplicateEdge),
		errors.Is(err, products.ErrDuplicateSKU),
		errors.Is(err, products.ErrInUse),
		errors.Is(err, catalog.ErrDuplicateName),
		errors.Is(err, catalog.ErrHasChildren),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, production.ErrClosed),
		errors.Is(err, production.ErrShortage),
		errors.Is(err, production.ErrNoBOM),
		errors.Is(err, orders.ErrClosed),
		errors.Is(err, orders.ErrDuplicateNumber):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal"
}

// fail writes the error envelope. Internal errors are logged and hidden from the client.
func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	var body errorBody
	body.Error.Code = code
	body.Error.Message = err.Error()
	if status == http.StatusInternalServerError {
		a.Log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		body.Error.Message = "internal server error"
	}
	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequestf("invalid json body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequestf("invalid id %q", raw)
	}
	return id, nil
}

// queryID parses a positive id; an absent value yields 0 unless required.
func queryID(r *http.Request, name string, required bool) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		if required {
			return 0, badRequestf("%s is required", name)
		}
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequestf("invalid %s %q", name, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
