package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rangershop/backend/api/controllers"
	"github.com/rangershop/backend/api/middleware"
	"github.com/rangershop/backend/internal/auth"
	"github.com/rangershop/backend/internal/orders"
	"github.com/rangershop/backend/internal/products"
	"github.com/rangershop/backend/internal/stats"
	"github.com/rangershop/backend/pkg/auth/session"
	"github.com/rangershop/backend/pkg/config"
	"github.com/rangershop/backend/pkg/db"
	"github.com/rangershop/backend/pkg/logger"
	"github.com/rangershop/backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Session session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	ProductService  products.Service
	OrderService    orders.Service
	StatsService    stats.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	requireAuth := middleware.Auth(cfg.JWT, p.Session, logg)

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
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.With(requireAuth).Get("/api/v1/ping", controllers.PrivatePing())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.RegisterService, p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.AuthService, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(p.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		// storefront listing is public
		r.Get("/", controllers.ListProducts(p.ProductService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", controllers.CreateProduct(p.ProductService, logg))
			r.Get("/{productID}", controllers.GetProduct(p.ProductService, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(p.ProductService, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(p.ProductService, logg))
			r.Post("/{productID}/increment", controllers.IncrementProductStock(p.ProductService, logg))
			r.Post("/{productID}/decrement", controllers.DecrementProductStock(p.ProductService, logg))
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", controllers.StartOrder(p.OrderService, logg))
		r.Get("/", controllers.ListOrders(p.OrderService, logg))
		r.Get("/{orderID}", controllers.GetOrder(p.OrderService, logg))
		r.Post("/{orderID}/lines", controllers.AddOrderLine(p.OrderService, logg))
		r.Patch("/{orderID}/lines/{lineID}", controllers.UpdateOrderLine(p.OrderService, logg))
		r.Delete("/{orderID}/lines/{lineID}", controllers.RemoveOrderLine(p.OrderService, logg))
	})

	r.With(requireAuth).Get("/api/v1/stats", controllers.ShopStats(p.StatsService, logg))

	return r
}
