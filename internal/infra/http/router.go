package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/Aurora209/inventory-system/internal/domain/bom"
	"github.com/Aurora209/inventory-system/internal/domain/catalog"
	"github.com/Aurora209/inventory-system/internal/domain/inventory"
	"github.com/Aurora209/inventory-system/internal/domain/orders"
	"github.com/Aurora209/inventory-system/internal/domain/production"
	"github.com/Aurora209/inventory-system/internal/domain/products"
	"github.com/Aurora209/inventory-system/internal/infra/metrics"
)

type BOMEngine interface {
	Direct(ctx context.Context, productID int64) ([]bom.Line, error)
	Expand(ctx context.Context, productID int64) ([]bom.Line, error)
}

type BOMEdges interface {
	Create(ctx context.Context, productID, materialID int64, qty decimal.Decimal, unit string) (*bom.Edge, error)
	UpdateQuantity(ctx context.Context, id int64, qty decimal.Decimal) (*bom.Edge, error)
	Delete(ctx context.Context, id int64) error
	DeleteByProduct(ctx context.Context, productID int64) (int64, error)
}

type ProductStore interface {
	Create(ctx context.Context, in products.NewProduct) (*products.Product, error)
	GetByID(ctx context.Context, id int64) (*products.Product, error)
	GetBySKU(ctx context.Context, sku string) (*products.Product, error)
	List(ctx context.Context, f products.ListFilter) (products.Page, error)
	ListForAlerts(ctx context.Context) ([]products.Product, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) (*products.Product, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	Create(ctx context.Context, name string, parentID *int64) (*catalog.Category, error)
	List(ctx context.Context) ([]catalog.Category, error)
	Tree(ctx context.Context) ([]catalog.Node, error)
	Rename(ctx context.Context, id int64, name string) (*catalog.Category, error)
	Delete(ctx context.Context, id int64) error
}

type TransactionService interface {
	Record(ctx context.Context, in inventory.NewTransaction) (*inventory.Transaction, error)
}

type TransactionLister interface {
	List(ctx context.Context, f inventory.ListFilter) ([]inventory.Transaction, error)
}

type StockCounter interface {
	Reconcile(ctx context.Context, counts []inventory.Count) ([]inventory.CountResult, error)
}

type PlanStore interface {
	Create(ctx context.Context, in production.NewPlan) (*production.Plan, error)
	GetByID(ctx context.Context, id int64) (*production.Plan, error)
	List(ctx context.Context, status production.Status) ([]production.Plan, error)
	UpdateStatus(ctx context.Context, id int64, status production.Status) (*production.Plan, error)
	Delete(ctx context.Context, id int64) error
}

type ProductionService interface {
	Requirements(ctx context.Context, id int64) (*production.Requirements, error)
	Complete(ctx context.Context, id int64) ([]inventory.Transaction, error)
	PurchaseList(ctx context.Context) ([]production.Purchase, error)
}

type OrderStore interface {
	Create(ctx context.Context, in orders.NewOrder) (*orders.Order, error)
	GetByID(ctx context.Context, id int64) (*orders.Order, error)
	List(ctx context.Context, f orders.ListFilter) (orders.Page, error)
	Update(ctx context.Context, id int64, p orders.Patch) (*orders.Order, error)
	Cancel(ctx context.Context, id int64) (*orders.Order, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (orders.Stats, error)
}

type OrderService interface {
	Complete(ctx context.Context, id int64) (*orders.Order, []inventory.Transaction, error)
}

// Deps wires the API. Nil stores leave their routes unregistered.
type Deps struct {
	Log           *slog.Logger
	Metrics       *metrics.Metrics
	ExposeMetrics bool

	Engine       BOMEngine
	Edges        BOMEdges
	Products     ProductStore
	Categories   CategoryStore
	Stock        TransactionService
	Transactions TransactionLister
	Counts       StockCounter
	Plans        PlanStore
	Production   ProductionService
	Orders       OrderStore
	Ordering     OrderService
}

type api struct {
	Deps
}

// NewRouter builds the HTTP handler with every route and the access-log middleware.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	a := &api{Deps: d}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if d.ExposeMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	if d.Engine != nil && d.Edges != nil && d.Products != nil {
		mux.HandleFunc("GET /bom", a.getBOM)
		mux.HandleFunc("GET /bom/export", a.exportBOM)
		mux.HandleFunc("POST /bom", a.createEdge)
		mux.HandleFunc("PUT /bom/{id}", a.updateEdge)
		mux.HandleFunc("DELETE /bom/{id}", a.deleteEdge)
		mux.HandleFunc("DELETE /bom/product/{id}", a.deleteProductBOM)
		mux.HandleFunc("POST /bom/import", a.importBOM)
	}

	if d.Products != nil {
		mux.HandleFunc("GET /products", a.listProducts)
		mux.HandleFunc("POST /products", a.createProduct)
		mux.HandleFunc("GET /products/{id}", a.getProduct)
		mux.HandleFunc("PUT /products/{id}/price", a.updatePrice)
		mux.HandleFunc("DELETE /products/{id}", a.deleteProduct)
		mux.HandleFunc("GET /alerts", a.listAlerts)
	}

	if d.Categories != nil {
		mux.HandleFunc("GET /categories", a.listCategories)
		mux.HandleFunc("POST /categories", a.createCategory)
		mux.HandleFunc("PUT /categories/{id}", a.renameCategory)
		mux.HandleFunc("DELETE /categories/{id}", a.deleteCategory)
	}

	if d.Stock != nil && d.Transactions != nil {
		mux.HandleFunc("GET /transactions", a.listTransactions)
		mux.HandleFunc("POST /transactions", a.createTransaction)
	}

	if d.Counts != nil {
		mux.HandleFunc("POST /inventory/check", a.stockCount)
	}

	if d.Plans != nil && d.Production != nil {
		mux.HandleFunc("GET /production", a.listPlans)
		mux.HandleFunc("POST /production", a.createPlan)
		mux.HandleFunc("GET /production/{id}", a.getPlan)
		mux.HandleFunc("PUT /production/{id}/status", a.updatePlanStatus)
		mux.HandleFunc("DELETE /production/{id}", a.deletePlan)
		mux.HandleFunc("GET /production/{id}/requirements", a.planRequirements)
		mux.HandleFunc("POST /production/{id}/complete", a.completePlan)
		mux.HandleFunc("GET /reports/purchase-list", a.purchaseList)
	}

	if d.Orders != nil && d.Ordering != nil {
		mux.HandleFunc("GET /orders", a.listOrders)
		mux.HandleFunc("POST /orders", a.createOrder)
		mux.HandleFunc("GET /orders/stats", a.orderStats)
		mux.HandleFunc("GET /orders/{id}", a.getOrder)
		mux.HandleFunc("PUT /orders/{id}", a.updateOrder)
		mux.HandleFunc("DELETE /orders/{id}", a.deleteOrder)
		mux.HandleFunc("POST /orders/{id}/complete", a.completeOrder)
		mux.HandleFunc("POST /orders/{id}/cancel", a.cancelOrder)
	}

	return accessLog(d.Log, d.Metrics, mux)
}
