package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/buy2brands/wholesale-api/api/controllers"
	cartcontrollers "github.com/buy2brands/wholesale-api/api/controllers/cart"
	ordercontrollers "github.com/buy2brands/wholesale-api/api/controllers/orders"
	webhookcontrollers "github.com/buy2brands/wholesale-api/api/controllers/webhooks"
	"github.com/buy2brands/wholesale-api/api/middleware"
	"github.com/buy2brands/wholesale-api/internal/auth"
	"github.com/buy2brands/wholesale-api/internal/cart"
	checkoutsvc "github.com/buy2brands/wholesale-api/internal/checkout"
	"github.com/buy2brands/wholesale-api/internal/orders"
	"github.com/buy2brands/wholesale-api/internal/products"
	"github.com/buy2brands/wholesale-api/internal/returns"
	"github.com/buy2brands/wholesale-api/internal/reviews"
	"github.com/buy2brands/wholesale-api/internal/shipping"
	"github.com/buy2brands/wholesale-api/internal/users"
	"github.com/buy2brands/wholesale-api/pkg/auth/session"
	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	pkgredis "github.com/buy2brands/wholesale-api/pkg/redis"
	"github.com/stripe/stripe-go/v84"
)

// RedisStore is the slice of the redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

type webhookParser interface {
	ParseEvent(payload []byte, signature string) (stripe.Event, bool, error)
}

// Dependencies is everything the router mounts. Nil services still mount
// their routes; the handlers answer 500 until they are wired.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Metrics  http.Handler
	HTTP     *metrics.HTTPMetrics

	Auth      auth.Service
	Users     users.Service
	Products  products.Service
	Reviews   reviews.Service
	Shipping  shipping.Service
	Cart      cart.Service
	Checkout  checkoutsvc.Service
	Payments  controllers.PaymentChannels
	Orders    orders.Service
	Returns   returns.Service
	Webhooks  webhookcontrollers.StripeWebhookService
	WebParser webhookParser
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTP),
		middleware.CORS(cfg.App.FrontendURL),
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

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(deps)))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.Webhooks, deps.WebParser, cfg.Stripe.WebhookMaxBytes, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, deps.Redis, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	// public catalog
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, false, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.Products, false, logg))
		r.Get("/{productID}/reviews", controllers.ListProductReviews(deps.Reviews, logg))
		r.With(
			middleware.Auth(cfg.JWT, deps.Sessions, logg),
			middleware.Idempotency(deps.Redis, logg),
		).Post("/{productID}/reviews", controllers.CreateReview(deps.Reviews, logg))
	})
	r.Route("/api/v1/shipping-structures", func(r chi.Router) {
		r.Get("/", controllers.ListShippingStructures(deps.Shipping, false, logg))
		r.Get("/{structureID}", controllers.GetShippingStructure(deps.Shipping, logg))
		r.Post("/{structureID}/calculate", controllers.CalculateShipping(deps.Shipping, logg))
	})

	// /products and /shipping-structures are mounted above, so their
	// authenticated writes live there too.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/me", controllers.Me(deps.Users, logg))
		r.Patch("/me", controllers.UpdateMe(deps.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{cartItemID}", cartcontrollers.CartUpdateQuantity(deps.Cart, logg))
			r.Delete("/items/{cartItemID}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/quote", controllers.CheckoutQuote(deps.Checkout, logg))
			r.Post("/payment-intent", controllers.CreatePaymentIntent(deps.Checkout, logg))
			r.Post("/checkout-session", controllers.CreateCheckoutSession(deps.Checkout, logg))
			r.Post("/confirm-payment", controllers.ConfirmPayment(deps.Payments, logg))
			r.Get("/verify-session/{sessionID}", controllers.VerifySession(deps.Payments, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.ListMine(deps.Orders, logg))
			r.Get("/{orderID}", ordercontrollers.Detail(deps.Orders, logg))
			r.Post("/{orderID}/cancel", ordercontrollers.CancelOrder(deps.Orders, logg))
			r.Delete("/{orderID}", ordercontrollers.DeleteOrder(deps.Orders, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", controllers.ListMyReturnRequests(deps.Returns, logg))
			r.Post("/", controllers.CreateReturnRequest(deps.Returns, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/mine", controllers.ListMyReviews(deps.Reviews, logg))
			r.Patch("/{reviewID}", controllers.UpdateReview(deps.Reviews, logg))
			r.Delete("/{reviewID}", controllers.DeleteReview(deps.Reviews, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminListUsers(deps.Users, logg))
				r.Patch("/{userID}/active", controllers.AdminSetUserActive(deps.Users, logg))
				r.Patch("/{userID}/role", controllers.AdminSetUserRole(deps.Users, logg))
				r.Delete("/{userID}", controllers.AdminDeleteUser(deps.Users, logg))
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Products, true, logg))
				r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
				r.Get("/{productID}", controllers.GetProduct(deps.Products, true, logg))
				r.Put("/{productID}", controllers.AdminUpdateProduct(deps.Products, logg))
				r.Delete("/{productID}", controllers.AdminDeleteProduct(deps.Products, logg))
			})
			r.Route("/shipping-structures", func(r chi.Router) {
				r.Get("/", controllers.ListShippingStructures(deps.Shipping, true, logg))
				r.Post("/", controllers.AdminCreateShippingStructure(deps.Shipping, logg))
				r.Put("/{structureID}", controllers.AdminUpdateShippingStructure(deps.Shipping, logg))
				r.Delete("/{structureID}", controllers.AdminDeleteShippingStructure(deps.Shipping, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.AdminList(deps.Orders, logg))
				r.Get("/{orderID}", ordercontrollers.Detail(deps.Orders, logg))
				r.Patch("/{orderID}/status", ordercontrollers.AdminUpdateStatus(deps.Orders, logg))
				r.Delete("/{orderID}", ordercontrollers.DeleteOrder(deps.Orders, logg))
			})
			r.Route("/returns", func(r chi.Router) {
				r.Get("/", controllers.AdminListReturnRequests(deps.Returns, logg))
				r.Patch("/{returnID}", controllers.AdminUpdateReturnRequest(deps.Returns, logg))
			})
		})
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DB != nil {
		checks["database"] = deps.DB
	}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}
