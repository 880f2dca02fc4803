package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crumbandco/cakeshop-backend/api/controllers"
	"github.com/crumbandco/cakeshop-backend/api/middleware"
	"github.com/crumbandco/cakeshop-backend/internal/addresses"
	"github.com/crumbandco/cakeshop-backend/internal/analytics"
	"github.com/crumbandco/cakeshop-backend/internal/auth"
	"github.com/crumbandco/cakeshop-backend/internal/cart"
	"github.com/crumbandco/cakeshop-backend/internal/catalog"
	checkoutsvc "github.com/crumbandco/cakeshop-backend/internal/checkout"
	"github.com/crumbandco/cakeshop-backend/internal/coupons"
	"github.com/crumbandco/cakeshop-backend/internal/favorites"
	"github.com/crumbandco/cakeshop-backend/internal/gallery"
	"github.com/crumbandco/cakeshop-backend/internal/media"
	"github.com/crumbandco/cakeshop-backend/internal/orders"
	"github.com/crumbandco/cakeshop-backend/internal/queries"
	"github.com/crumbandco/cakeshop-backend/internal/users"
	"github.com/crumbandco/cakeshop-backend/pkg/auth/session"
	"github.com/crumbandco/cakeshop-backend/pkg/config"
	"github.com/crumbandco/cakeshop-backend/pkg/logger"
	"github.com/crumbandco/cakeshop-backend/pkg/metrics"
	"github.com/crumbandco/cakeshop-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router mounts.
type Services struct {
	Auth      auth.Service
	Register  auth.RegisterService
	Users     users.Service
	Addresses addresses.Service
	Catalog   catalog.Service
	Cart      cart.Service
	Coupons   coupons.Service
	Checkout  checkoutsvc.Service
	Drafts    *checkoutsvc.DraftStore
	Orders    orders.Service
	Favorites favorites.Service
	Media     media.Service
	Gallery   gallery.Service
	Queries   queries.Service
	Analytics analytics.Service
}

// Deps carries infrastructure the router and its middleware need directly.
type Deps struct {
	Redis    *redis.Client
	Sessions sessionManager
	Metrics  *metrics.HTTPMetrics
	Registry *prometheus.Registry
	Ready    []controllers.ReadyCheck
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps, svcs Services) http.Handler {
	// Assigning a nil *redis.Client straight into an interface parameter
	// would defeat the middlewares' nil checks, so convert here.
	var limiterStore middleware.RateLimiterStore
	var idemStore redis.IdempotencyStore
	if deps.Redis != nil {
		limiterStore = deps.Redis
		idemStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready...))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/forgot-password", controllers.AuthForgotPassword(svcs.Auth, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(svcs.Auth, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(svcs.Register, svcs.Auth, cfg, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AdminAuthLogin(svcs.Auth, logg))
	})

	// Public storefront reads and the contact form need no session.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/products", controllers.CatalogProducts(svcs.Catalog, logg))
		r.Get("/products/{productId}", controllers.CatalogProductDetail(svcs.Catalog, logg))
		r.Get("/categories", controllers.CatalogCategories(svcs.Catalog, logg))
		r.Get("/addons", controllers.CatalogAddons(svcs.Catalog, logg))
	})
	r.Get("/api/v1/gallery", controllers.GalleryList(svcs.Gallery, logg))
	r.Post("/api/v1/queries", controllers.QuerySubmit(svcs.Queries, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Get("/me", controllers.Me(svcs.Users, logg))
		r.Route("/me/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileFetch(svcs.Users, logg))
			r.Put("/", controllers.ProfileUpdate(svcs.Users, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(svcs.Addresses, logg))
			r.Post("/", controllers.AddressCreate(svcs.Addresses, logg))
			r.Get("/{addressId}", controllers.AddressGet(svcs.Addresses, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(svcs.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(svcs.Addresses, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartSetQuantity(svcs.Cart, logg))
			r.Patch("/items/{itemId}/addons/{addonId}", controllers.CartAdjustAddon(svcs.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(svcs.Favorites, logg))
			r.Put("/{productId}", controllers.FavoritesAdd(svcs.Favorites, logg))
			r.Delete("/{productId}", controllers.FavoritesRemove(svcs.Favorites, logg))
		})

		r.Post("/coupons/validate", controllers.CouponValidate(svcs.Coupons, svcs.Cart, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.Checkout(svcs.Checkout, logg))
			r.Get("/draft", controllers.CheckoutDraftFetch(svcs.Drafts, logg))
			r.Put("/draft", controllers.CheckoutDraftSave(svcs.Cart, svcs.Coupons, svcs.Drafts, logg))
			r.Delete("/draft", controllers.CheckoutDraftClear(svcs.Drafts, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersHistory(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrdersDetail(svcs.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(svcs.Catalog, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(svcs.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(svcs.Catalog, logg))
			r.Post("/{productId}/sizes", controllers.AdminSizeCreate(svcs.Catalog, logg))
			r.Patch("/{productId}/sizes/{sizeId}", controllers.AdminSizeUpdate(svcs.Catalog, logg))
			r.Delete("/{productId}/sizes/{sizeId}", controllers.AdminSizeDelete(svcs.Catalog, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoryCreate(svcs.Catalog, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(svcs.Catalog, logg))
		})

		r.Route("/addons", func(r chi.Router) {
			r.Get("/", controllers.AdminAddonList(svcs.Catalog, logg))
			r.Post("/", controllers.AdminAddonCreate(svcs.Catalog, logg))
			r.Patch("/{addonId}", controllers.AdminAddonUpdate(svcs.Catalog, logg))
			r.Delete("/{addonId}", controllers.AdminAddonDelete(svcs.Catalog, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponList(svcs.Coupons, logg))
			r.Post("/", controllers.AdminCouponCreate(svcs.Coupons, logg))
			r.Get("/{couponId}", controllers.AdminCouponGet(svcs.Coupons, logg))
			r.Put("/{couponId}", controllers.AdminCouponUpdate(svcs.Coupons, logg))
			r.Delete("/{couponId}", controllers.AdminCouponDelete(svcs.Coupons, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(svcs.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderStatus(svcs.Orders, logg))
		})

		r.Route("/gallery", func(r chi.Router) {
			r.Post("/", controllers.AdminGalleryCreate(svcs.Gallery, logg))
			r.Patch("/{imageId}", controllers.AdminGalleryUpdate(svcs.Gallery, logg))
			r.Delete("/{imageId}", controllers.AdminGalleryDelete(svcs.Gallery, logg))
		})
		r.Post("/media/presign", controllers.MediaPresign(svcs.Media, logg))

		r.Route("/queries", func(r chi.Router) {
			r.Get("/", controllers.AdminQueryList(svcs.Queries, logg))
			r.Post("/{queryId}/resolve", controllers.AdminQueryResolve(svcs.Queries, logg))
			r.Post("/{queryId}/reopen", controllers.AdminQueryReopen(svcs.Queries, logg))
		})

		r.Get("/analytics/sales", controllers.AdminSalesReport(svcs.Analytics, logg))
	})

	return r
}
