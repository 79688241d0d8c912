package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storefrontlabs/storefront/api/controllers"
	"github.com/storefrontlabs/storefront/api/middleware"
	authsvc "github.com/storefrontlabs/storefront/internal/auth"
	cartsvc "github.com/storefrontlabs/storefront/internal/cart"
	categorysvc "github.com/storefrontlabs/storefront/internal/categories"
	checkoutsvc "github.com/storefrontlabs/storefront/internal/checkout"
	ordersvc "github.com/storefrontlabs/storefront/internal/orders"
	productsvc "github.com/storefrontlabs/storefront/internal/products"
	"github.com/storefrontlabs/storefront/pkg/auth/session"
	"github.com/storefrontlabs/storefront/pkg/config"
	"github.com/storefrontlabs/storefront/pkg/db"
	"github.com/storefrontlabs/storefront/pkg/logger"
	"github.com/storefrontlabs/storefront/pkg/metrics"
	"github.com/storefrontlabs/storefront/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	authService authsvc.Service,
	categoryService categorysvc.Service,
	productService productsvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	authed := middleware.Auth(cfg.JWT, sessionManager, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.With(authed).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", controllers.CategoryList(categoryService, logg))
		r.Get("/{id}", controllers.CategoryGet(categoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/", controllers.CategoryCreate(categoryService, logg))
			r.Patch("/{id}", controllers.CategoryUpdate(categoryService, logg))
			r.Delete("/{id}", controllers.CategoryDelete(categoryService, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(productService, logg))
		r.Get("/{id}", controllers.ProductGet(productService, logg))

		// Mutations need a token; creator-or-admin is enforced in the service.
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Patch("/{id}", controllers.ProductUpdate(productService, logg))
			r.Delete("/{id}", controllers.ProductDelete(productService, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(authed)

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(cartService, logg))
			r.Post("/items", controllers.CartAdd(cartService, logg))
			r.Delete("/items/{productID}", controllers.CartRemove(cartService, logg))
		})

		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutPlaceOrder(checkoutService, logg))
			r.Post("/selective", controllers.CheckoutSelective(checkoutService, logg))
		})

		r.Get("/api/v1/orders", controllers.OrderHistory(orderService, logg))
	})

	return r
}
