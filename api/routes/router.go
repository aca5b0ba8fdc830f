package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/davidquint/raffle-backend/api/controllers"
	"github.com/davidquint/raffle-backend/api/middleware"
	"github.com/davidquint/raffle-backend/internal/auth"
	"github.com/davidquint/raffle-backend/internal/cart"
	"github.com/davidquint/raffle-backend/internal/catalog"
	"github.com/davidquint/raffle-backend/internal/checkout"
	"github.com/davidquint/raffle-backend/internal/events"
	"github.com/davidquint/raffle-backend/internal/media"
	"github.com/davidquint/raffle-backend/internal/orders"
	"github.com/davidquint/raffle-backend/pkg/auth/session"
	"github.com/davidquint/raffle-backend/pkg/config"
	"github.com/davidquint/raffle-backend/pkg/enums"
	"github.com/davidquint/raffle-backend/pkg/logger"
	"github.com/davidquint/raffle-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Redis      *redis.Client
	Sessions   *session.Manager
	Carts      *cart.Store
	Events     events.Service
	Catalog    catalog.Service
	Checkout   checkout.Service
	Orders     orders.Service
	Media      media.Service
	Auth       auth.Service
	Register   auth.RegisterService
	HealthDeps map[string]controllers.Pinger
}

// New assembles the router.
func New(deps Deps) chi.Router {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS())

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(logg, deps.HealthDeps))

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/hello", controllers.Hello())
		r.Get("/ping", controllers.Ping())

		r.Get("/event", controllers.CurrentEvent(deps.Events, logg))
		r.Get("/items", controllers.CurrentItems(deps.Events, deps.Catalog, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Carts, logg))
			r.Post("/items", controllers.AddCartItem(deps.Carts, deps.Catalog, logg))
			r.Patch("/items/{itemID}", controllers.UpdateCartItem(deps.Carts, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Carts, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/validate", controllers.ValidateCheckout(deps.Checkout, logg))
			r.With(middleware.Idempotency(deps.Redis, logg)).
				Post("/submit", controllers.SubmitCheckout(deps.Checkout, logg))
		})

		r.Get("/orders/{orderNumber}", controllers.OrderConfirmation(deps.Orders, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		loginPolicy := middleware.NewLoginRateLimitPolicy(cfg.AuthRateLimit)
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.Auth, logg))
		r.Post("/refresh", controllers.Refresh(deps.Auth, logg))
		r.Post("/logout", controllers.Logout(deps.Auth, logg))

		if !cfg.App.IsProd() {
			r.Post("/register", controllers.Register(deps.Register, logg))
		}
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(logg, string(enums.UserRoleAdmin), string(enums.UserRoleStaff)))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		// Staff get the read surface; every mutation needs the admin role.
		adminOnly := middleware.RequireRole(logg, string(enums.UserRoleAdmin))

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.ListEvents(deps.Events, logg))
			r.With(adminOnly).Post("/", controllers.CreateEvent(deps.Events, logg))
			r.Get("/{eventID}", controllers.GetEvent(deps.Events, logg))
			r.With(adminOnly).Patch("/{eventID}", controllers.UpdateEvent(deps.Events, logg))
			r.With(adminOnly).Put("/{eventID}/settings", controllers.UpsertEventSettings(deps.Events, logg))
			r.With(adminOnly).Post("/{eventID}/header-image", controllers.UploadEventHeaderImage(deps.Events, deps.Media, logg))

			r.Get("/{eventID}/items", controllers.ListItems(deps.Catalog, logg))
			r.With(adminOnly).Post("/{eventID}/items", controllers.CreateItem(deps.Catalog, logg))

			r.Get("/{eventID}/orders", controllers.ListOrders(deps.Orders, logg))
		})

		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/", controllers.GetItem(deps.Catalog, logg))
			r.With(adminOnly).Patch("/", controllers.UpdateItem(deps.Catalog, logg))
			r.With(adminOnly).Delete("/", controllers.DeleteItem(deps.Catalog, logg))
			r.With(adminOnly).Post("/image", controllers.UploadItemImage(deps.Catalog, deps.Media, logg))
		})

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", controllers.GetOrder(deps.Orders, logg))
			r.With(adminOnly).Patch("/status", controllers.UpdateOrderStatus(deps.Orders, logg))
		})
	})

	return r
}
