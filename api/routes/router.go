package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parttrack/parttrack-backend/api/controllers"
	"github.com/parttrack/parttrack-backend/api/middleware"
	"github.com/parttrack/parttrack-backend/internal/access"
	"github.com/parttrack/parttrack-backend/internal/auditlog"
	"github.com/parttrack/parttrack-backend/internal/export"
	"github.com/parttrack/parttrack-backend/internal/ledger"
	"github.com/parttrack/parttrack-backend/internal/notify"
	"github.com/parttrack/parttrack-backend/internal/settings"
	"github.com/parttrack/parttrack-backend/internal/stats"
	"github.com/parttrack/parttrack-backend/internal/users"
	"github.com/parttrack/parttrack-backend/pkg/config"
	"github.com/parttrack/parttrack-backend/pkg/logger"
)

// Deps carries everything the router needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Registry prometheus.Gatherer

	Access   access.Service
	Ledger   ledger.Service
	AuditLog auditlog.Service
	Stats    stats.Service
	Users    users.Service
	Settings settings.Service
	Notify   notify.Service
	Export   export.Service
}

// NewRouter assembles the HTTP surface. Scan and PIN endpoints are open
// (gated by the API key outside dev); everything else under /api/v1 requires
// a bearer token, and mutating ledger admin routes require the supervisor
// role.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.APIKey(cfg.App.APIKey, logg))

		r.Route("/access", func(r chi.Router) {
			r.Post("/scan", controllers.AccessScan(deps.Access, deps.Ledger, logg))
			r.Post("/pin", controllers.AccessPin(deps.Access, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/parts", func(r chi.Router) {
				r.Get("/", controllers.PartsList(deps.Ledger, logg))
				r.Get("/low-stock", controllers.PartsLowStock(deps.Ledger, logg))
				r.Get("/{id}", controllers.PartGet(deps.Ledger, logg))
				r.Post("/{id}/take", controllers.PartTake(deps.Ledger, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSupervisor(logg))
					r.Post("/", controllers.PartCreate(deps.Ledger, logg))
					r.Patch("/{id}", controllers.PartUpdate(deps.Ledger, logg))
					r.Delete("/{id}", controllers.PartDelete(deps.Ledger, logg))
					r.Post("/{id}/restock", controllers.PartRestock(deps.Ledger, logg))
				})
			})

			r.With(middleware.RequireSupervisor(logg)).
				Post("/stock/reset", controllers.StockReset(deps.Ledger, logg))

			r.Get("/logs", controllers.LogsList(deps.AuditLog, logg))

			r.Route("/stats", func(r chi.Router) {
				r.Get("/consumption", controllers.StatsConsumption(deps.Stats, logg))
				r.Get("/operators/{id}/weekly", controllers.StatsOperatorWeekly(deps.Stats, logg))
				r.With(middleware.RequireSupervisor(logg)).
					Post("/reset", controllers.StatsReset(deps.Stats, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireSupervisor(logg))
				r.Get("/", controllers.UsersList(deps.Users, logg))
				r.Post("/", controllers.UserAdd(deps.Users, logg))
				r.Delete("/{id}", controllers.UserRemove(deps.Users, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.Use(middleware.RequireSupervisor(logg))
				r.Get("/", controllers.SettingsGet(deps.Settings, logg))
				r.Put("/", controllers.SettingsUpdate(deps.Settings, logg))
				r.Post("/telegram/detect", controllers.TelegramDetect(deps.Notify, logg))
			})

			r.Route("/notify", func(r chi.Router) {
				r.Get("/low-stock", controllers.NotifyLowStockReport(deps.Notify, logg))
				r.With(middleware.RequireSupervisor(logg)).
					Post("/low-stock", controllers.NotifyLowStockSend(deps.Notify, logg))
			})

			r.Route("/export", func(r chi.Router) {
				r.Use(middleware.RequireSupervisor(logg))
				r.Get("/stock.csv", controllers.ExportStockCSV(deps.Export, logg))
				r.Get("/logs.csv", controllers.ExportLogsCSV(deps.Export, logg))
			})
		})
	})

	return r
}
