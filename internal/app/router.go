package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geepos/geepos/internal/auth"
	"github.com/geepos/geepos/internal/dashboard"
	"github.com/geepos/geepos/internal/exports"
	"github.com/geepos/geepos/internal/imports"
	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/masterdata/suppliers"
	"github.com/geepos/geepos/internal/masterdata/zones"
	"github.com/geepos/geepos/internal/observability"
	"github.com/geepos/geepos/internal/orders"
	"github.com/geepos/geepos/internal/rbac"
	"github.com/geepos/geepos/internal/sales"
	"github.com/geepos/geepos/internal/shared"
	"github.com/geepos/geepos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Guard          rbac.Guard

	AuthHandler        *auth.Handler
	PermissionsHandler *rbac.PermissionsHandler
	DashboardHandler   *dashboard.Handler
	ProductsHandler    *products.Handler
	SuppliersHandler   *suppliers.Handler
	ZonesHandler       *zones.Handler
	OrdersHandler      *orders.Handler
	ImportsHandler     *imports.Handler
	ExportsHandler     *exports.Handler
	SalesHandler       *sales.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with GeePOS defaults. Every business
// route group sits behind the guard keyed by its canonical navigation path,
// so the same table that drives menu rendering decides request access.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	params.AuthHandler.MountRoutes(r)
	r.Route("/permissions", params.PermissionsHandler.MountRoutes)

	guarded := func(path string, mount func(chi.Router)) {
		r.Route(path, func(sub chi.Router) {
			sub.Use(params.Guard.Require(path))
			mount(sub)
		})
	}

	guarded(rbac.PathDashboard, params.DashboardHandler.MountRoutes)
	guarded(rbac.PathProducts, params.ProductsHandler.MountRoutes)
	guarded(rbac.PathSuppliers, params.SuppliersHandler.MountRoutes)
	guarded(rbac.PathZones, params.ZonesHandler.MountRoutes)
	guarded(rbac.PathOrders, params.OrdersHandler.MountRoutes)
	guarded(rbac.PathImports, params.ImportsHandler.MountRoutes)
	guarded(rbac.PathExports, params.ExportsHandler.MountRoutes)
	guarded(rbac.PathSales, params.SalesHandler.MountRoutes)

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
