package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pageturn/bookstore-backend/api/routes"
	"github.com/pageturn/bookstore-backend/internal/auth"
	"github.com/pageturn/bookstore-backend/internal/books"
	"github.com/pageturn/bookstore-backend/internal/cart"
	"github.com/pageturn/bookstore-backend/internal/categories"
	"github.com/pageturn/bookstore-backend/internal/checkout"
	"github.com/pageturn/bookstore-backend/internal/users"
	"github.com/pageturn/bookstore-backend/pkg/auth/session"
	"github.com/pageturn/bookstore-backend/pkg/config"
	"github.com/pageturn/bookstore-backend/pkg/db"
	"github.com/pageturn/bookstore-backend/pkg/logger"
	"github.com/pageturn/bookstore-backend/pkg/metrics"
	"github.com/pageturn/bookstore-backend/pkg/migrate"
	"github.com/pageturn/bookstore-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewSessionStore(redisClient, cfg.Cart.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart session store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	oauthService, err := auth.NewOAuthService(auth.OAuthServiceParams{
		DB:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create oauth service", err)
		os.Exit(1)
	}

	bookService, err := books.NewService(books.ServiceParams{DB: dbClient, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create book service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Store:  cartStore,
		DB:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Store:   cartStore,
		DB:      dbClient,
		Logger:  logg,
		Metrics: httpMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionManager:  sessionManager,
			Metrics:         httpMetrics,
			MetricsGatherer: registry,
			AuthService:     authService,
			RegisterService: registerService,
			OAuthService:    oauthService,
			BookService:     bookService,
			CategoryService: categoryService,
			CartService:     cartService,
			CheckoutService: checkoutService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
