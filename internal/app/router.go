package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/meridian-agro/meridian/internal/catalog"
	"github.com/meridian-agro/meridian/internal/dashboard"
	"github.com/meridian-agro/meridian/internal/directory"
	"github.com/meridian-agro/meridian/internal/inventory"
	"github.com/meridian-agro/meridian/internal/orders"
	"github.com/meridian-agro/meridian/internal/rfq"
	"github.com/meridian-agro/meridian/internal/shared"
	"github.com/meridian-agro/meridian/internal/shipments"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	StaffChecker     shared.StaffChecker
	CatalogHandler   *catalog.Handler
	InventoryHandler *inventory.Handler
	RFQHandler       *rfq.Handler
	DirectoryHandler *directory.Handler
	OrdersHandler    *orders.Handler
	ShipmentsHandler *shipments.Handler
	DashboardHandler *dashboard.Handler
}

// NewRouter constructs the chi.Router. Public routes are the product
// listing and RFQ submission; everything else sits behind the staff
// gate.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	submitLimit := 10
	if params.Config != nil && params.Config.RFQSubmitPerMinute > 0 {
		submitLimit = params.Config.RFQSubmitPerMinute
	}

	r.Group(func(public chi.Router) {
		params.CatalogHandler.MountPublicRoutes(public)
		public.Group(func(throttled chi.Router) {
			throttled.Use(httprate.Limit(submitLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.RFQHandler.MountPublicRoutes(throttled)
		})
	})

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(shared.RequireStaff(params.StaffChecker, params.Logger))
		params.CatalogHandler.MountRoutes(admin)
		params.InventoryHandler.MountRoutes(admin)
		params.RFQHandler.MountRoutes(admin)
		params.DirectoryHandler.MountRoutes(admin)
		params.OrdersHandler.MountRoutes(admin)
		params.ShipmentsHandler.MountRoutes(admin)
		params.DashboardHandler.MountRoutes(admin)
	})

	return r
}
