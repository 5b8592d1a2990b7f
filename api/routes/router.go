package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageturn/bookstore-backend/api/controllers"
	"github.com/pageturn/bookstore-backend/api/middleware"
	"github.com/pageturn/bookstore-backend/internal/auth"
	"github.com/pageturn/bookstore-backend/internal/books"
	"github.com/pageturn/bookstore-backend/internal/cart"
	"github.com/pageturn/bookstore-backend/internal/categories"
	"github.com/pageturn/bookstore-backend/internal/checkout"
	"github.com/pageturn/bookstore-backend/pkg/auth/session"
	"github.com/pageturn/bookstore-backend/pkg/config"
	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/enums"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	"github.com/pageturn/bookstore-backend/pkg/metrics"
	"github.com/pageturn/bookstore-backend/pkg/redis"
)

// Deps bundles everything the router needs so cmd/api wires one struct.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionManager  *session.Manager
	Metrics         *metrics.HTTPMetrics
	MetricsGatherer prometheus.Gatherer

	AuthService     auth.Service
	RegisterService auth.RegisterService
	OAuthService    auth.OAuthService
	BookService     books.Service
	CategoryService categories.Service
	CartService     cart.Service
	CheckoutService checkout.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CartSession(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
		"username",
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
		"email",
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, deps.CartService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, deps.CartService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/oauth", controllers.AuthOAuth(deps.OAuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/books", controllers.BookList(deps.BookService, logg))
		r.Get("/books/{bookId}", controllers.BookGet(deps.BookService, logg))
		r.Get("/categories", controllers.CategoryList(deps.CategoryService, logg))
		r.Get("/categories/{categoryId}", controllers.CategoryGet(deps.CategoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionManager, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.CartService, logg))
				r.Delete("/", controllers.CartClear(deps.CartService, logg))
				r.Post("/items", controllers.CartAddItem(deps.CartService, deps.BookService, logg))
				r.Patch("/items/{bookId}", controllers.CartUpdateItem(deps.CartService, logg))
				r.Delete("/items/{bookId}", controllers.CartRemoveItem(deps.CartService, logg))
			})
			r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin.String(), logg))

		r.Route("/books", func(r chi.Router) {
			r.Post("/", controllers.BookCreate(deps.BookService, logg))
			r.Patch("/{bookId}", controllers.BookUpdate(deps.BookService, logg))
			r.Delete("/{bookId}", controllers.BookDelete(deps.BookService, logg))
			r.Post("/{bookId}/stock/increase", controllers.BookStockIncrease(deps.BookService, logg))
			r.Post("/{bookId}/stock/decrease", controllers.BookStockDecrease(deps.BookService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(deps.CategoryService, logg))
			r.Patch("/{categoryId}", controllers.CategoryUpdate(deps.CategoryService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(deps.CategoryService, logg))
		})
	})

	return r
}
