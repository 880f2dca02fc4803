package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crumbandco/cakeshop-backend/api/controllers"
	"github.com/crumbandco/cakeshop-backend/api/routes"
	"github.com/crumbandco/cakeshop-backend/internal/addresses"
	"github.com/crumbandco/cakeshop-backend/internal/analytics"
	"github.com/crumbandco/cakeshop-backend/internal/auth"
	"github.com/crumbandco/cakeshop-backend/internal/cart"
	"github.com/crumbandco/cakeshop-backend/internal/catalog"
	"github.com/crumbandco/cakeshop-backend/internal/checkout"
	"github.com/crumbandco/cakeshop-backend/internal/coupons"
	"github.com/crumbandco/cakeshop-backend/internal/favorites"
	"github.com/crumbandco/cakeshop-backend/internal/gallery"
	"github.com/crumbandco/cakeshop-backend/internal/media"
	"github.com/crumbandco/cakeshop-backend/internal/orders"
	"github.com/crumbandco/cakeshop-backend/internal/queries"
	"github.com/crumbandco/cakeshop-backend/internal/users"
	"github.com/crumbandco/cakeshop-backend/pkg/auth/session"
	"github.com/crumbandco/cakeshop-backend/pkg/config"
	"github.com/crumbandco/cakeshop-backend/pkg/db"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
	"github.com/crumbandco/cakeshop-backend/pkg/metrics"
	"github.com/crumbandco/cakeshop-backend/pkg/migrate"
	"github.com/crumbandco/cakeshop-backend/pkg/redis"
	"github.com/crumbandco/cakeshop-backend/pkg/storage/gcs"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.Storage, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing cloud storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		ResetStore:     redisClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:        dbClient,
		UserRepoFactory: auth.DefaultUserRepoFactory,
		PasswordConfig:  cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	addressRepo := addresses.NewRepository(dbClient.DB())
	couponService := coupons.NewService(coupons.NewRepository(dbClient.DB()), logg)
	draftStore := checkout.NewDraftStore(redisClient, cfg.Checkout.DraftTTL)
	checkoutService := checkout.NewService(
		cartRepo,
		couponService,
		addressRepo,
		checkout.NewOrderWriter(),
		dbClient,
		draftStore,
		logg,
		cfg.Checkout.OrderRefChars,
	)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	svcs := routes.Services{
		Auth:      authService,
		Register:  registerService,
		Users:     users.NewService(users.NewRepository(dbClient.DB())),
		Addresses: addresses.NewService(addressRepo),
		Catalog:   catalog.NewService(catalog.NewRepository(dbClient.DB())),
		Cart:      cart.NewService(cartRepo),
		Coupons:   couponService,
		Checkout:  checkoutService,
		Drafts:    draftStore,
		Orders:    orders.NewService(orders.NewRepository(dbClient.DB()), logg),
		Favorites: favorites.NewService(favorites.NewRepository(dbClient.DB())),
		Media:     mediaService,
		Gallery:   gallery.NewService(gallery.NewRepository(dbClient.DB()), mediaService, logg),
		Queries:   queries.NewService(queries.NewRepository(dbClient.DB())),
		Analytics: analytics.NewService(analytics.NewRepository(dbClient.DB())),
	}

	deps := routes.Deps{
		Redis:    redisClient,
		Sessions: sessionManager,
		Metrics:  httpMetrics,
		Registry: registry,
		Ready: []controllers.ReadyCheck{
			{Name: "database", Pinger: dbClient},
			{Name: "redis", Pinger: redisClient},
			{Name: "storage", Pinger: gcsClient},
		},
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, deps, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
