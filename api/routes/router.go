package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickplate/quickplate-backend/api/controllers"
	"github.com/quickplate/quickplate-backend/api/middleware"
	"github.com/quickplate/quickplate-backend/internal/analytics"
	"github.com/quickplate/quickplate-backend/internal/cart"
	"github.com/quickplate/quickplate-backend/internal/inventory"
	"github.com/quickplate/quickplate-backend/internal/menu"
	"github.com/quickplate/quickplate-backend/internal/orders"
	"github.com/quickplate/quickplate-backend/internal/users"
	"github.com/quickplate/quickplate-backend/pkg/auth/session"
	"github.com/quickplate/quickplate-backend/pkg/config"
	"github.com/quickplate/quickplate-backend/pkg/db"
	"github.com/quickplate/quickplate-backend/pkg/enums"
	"github.com/quickplate/quickplate-backend/pkg/logger"
	"github.com/quickplate/quickplate-backend/pkg/metrics"
	"github.com/quickplate/quickplate-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *redis.Client
	Sessions  session.AccessSessionChecker
	Users     users.Service
	Menu      menu.Service
	Cart      cart.Service
	Orders    orders.Service
	Inventory inventory.Service
	Analytics analytics.Service
	HTTP      *metrics.HTTPMetrics
	Gatherer  prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(deps.HTTP),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	requireStaff := middleware.RequireRole(logg, string(enums.UserRoleKitchen), string(enums.UserRoleAdmin))
	requireAdmin := middleware.RequireRole(logg, string(enums.UserRoleAdmin))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
				Post("/register", controllers.AuthRegister(deps.Users, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/login", controllers.AuthLogin(deps.Users, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", controllers.AuthLogout(deps.Users, logg))
				r.Get("/me", controllers.AuthMe(deps.Users, logg))
			})
		})

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", controllers.MenuList(deps.Menu, logg))
			r.Get("/{itemId}", controllers.MenuGet(deps.Menu, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Cart, logg))
				r.Delete("/", controllers.CartClear(deps.Cart, logg))
				r.Post("/items", controllers.CartAdd(deps.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartAdjust(deps.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemove(deps.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/checkout", controllers.Checkout(deps.Orders, logg))
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderGet(deps.Orders, logg))
			})

			r.Route("/kitchen", func(r chi.Router) {
				r.Use(requireStaff)
				r.Get("/orders", controllers.KitchenQueue(deps.Orders, logg))
				r.Patch("/orders/{orderId}/status", controllers.KitchenUpdateStatus(deps.Orders, logg))
				r.Get("/analytics", controllers.KitchenAnalytics(deps.Analytics, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Patch("/menu/{itemId}/availability", controllers.AdminSetAvailability(deps.Menu, logg))
				r.Get("/ingredients", controllers.AdminListIngredients(deps.Inventory, logg))
				r.Post("/ingredients/{ingredientId}/stock", controllers.AdminAdjustStock(deps.Inventory, logg))
				r.Get("/inventory/usage", controllers.AdminUsageHistory(deps.Inventory, logg))
				r.Route("/analytics", func(r chi.Router) {
					r.Get("/status-counts", controllers.AdminStatusCounts(deps.Analytics, logg))
					r.Get("/popular", controllers.AdminPopularItems(deps.Analytics, logg))
					r.Get("/roi", controllers.AdminROIReport(deps.Analytics, logg))
				})
			})
		})
	})

	return r
}
