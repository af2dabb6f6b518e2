package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scanpos/scanpos-backend/api/controllers"
	"github.com/scanpos/scanpos-backend/api/middleware"
	"github.com/scanpos/scanpos-backend/internal/catalog"
	"github.com/scanpos/scanpos-backend/internal/checkout"
	"github.com/scanpos/scanpos-backend/internal/transactions"
	"github.com/scanpos/scanpos-backend/pkg/config"
	"github.com/scanpos/scanpos-backend/pkg/logger"
	"github.com/scanpos/scanpos-backend/pkg/metrics"
	pkgredis "github.com/scanpos/scanpos-backend/pkg/redis"
)

// Deps wires the router. Redis and Idempotency stay nil when no Redis
// endpoint is configured.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        controllers.Pinger
	Idempotency  pkgredis.IdempotencyStore
	Catalog      catalog.Service
	Checkout     checkout.Service
	Transactions transactions.Service
	HTTPMetrics  *metrics.HTTPMetrics
	Gatherer     prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		deps.HTTPMetrics.Middleware,
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scan", controllers.ScanBarcode(deps.Catalog, logg))
		r.With(middleware.Idempotency(deps.Idempotency, cfg.Checkout.IdempotencyTTL, logg)).
			Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.ListItems(deps.Catalog, logg))
				r.Post("/", controllers.CreateItem(deps.Catalog, logg))
				r.Get("/{itemId}", controllers.GetItem(deps.Catalog, logg))
				r.Put("/{itemId}", controllers.UpdateItem(deps.Catalog, logg))
				r.Delete("/{itemId}", controllers.DeleteItem(deps.Catalog, logg))
				r.Get("/{itemId}/history", controllers.ItemHistory(deps.Catalog, logg))
			})
			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", controllers.ListTransactions(deps.Transactions, logg))
				r.Get("/{transactionId}", controllers.GetTransaction(deps.Transactions, logg))
			})
			r.Get("/dashboard/summary", controllers.SalesSummary(deps.Transactions, logg))
		})
	})

	return r
}
