package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/buy2brands/wholesale-api/api/routes"
	"github.com/buy2brands/wholesale-api/internal/auth"
	"github.com/buy2brands/wholesale-api/internal/cart"
	"github.com/buy2brands/wholesale-api/internal/checkout"
	"github.com/buy2brands/wholesale-api/internal/notifications"
	"github.com/buy2brands/wholesale-api/internal/orders"
	"github.com/buy2brands/wholesale-api/internal/products"
	"github.com/buy2brands/wholesale-api/internal/reconciliation"
	"github.com/buy2brands/wholesale-api/internal/returns"
	"github.com/buy2brands/wholesale-api/internal/reviews"
	"github.com/buy2brands/wholesale-api/internal/shipping"
	"github.com/buy2brands/wholesale-api/internal/users"
	stripewebhook "github.com/buy2brands/wholesale-api/internal/webhooks/stripe"
	"github.com/buy2brands/wholesale-api/pkg/auth/session"
	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/email"
	"github.com/buy2brands/wholesale-api/pkg/env"
	"github.com/buy2brands/wholesale-api/pkg/instance"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	"github.com/buy2brands/wholesale-api/pkg/migrate"
	"github.com/buy2brands/wholesale-api/pkg/outbox"
	"github.com/buy2brands/wholesale-api/pkg/realtime"
	"github.com/buy2brands/wholesale-api/pkg/redis"
	"github.com/buy2brands/wholesale-api/pkg/stripe"
)

const (
	webhookEventTTL = 72 * time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if loaded, err := env.Load(); err != nil {
		logg.Error(context.Background(), "failed to read dotenv files", err)
		os.Exit(1)
	} else if len(loaded) == 0 {
		logg.Debug(context.Background(), "no dotenv files found, relying on environment")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	broadcaster, err := realtime.NewBroadcaster(redisClient, cfg.Realtime)
	if err != nil {
		return err
	}
	notifier, err := notifications.NewService(notifications.ServiceParams{
		Sender:      email.NewSender(cfg.Sendgrid, logg),
		Broadcaster: broadcaster,
		AdminEmail:  cfg.Sendgrid.AdminEmail,
		Metrics:     metrics.NewNotificationMetrics(registry),
	})
	if err != nil {
		return err
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	usersRepo := users.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		return err
	}

	shippingService, err := shipping.NewService(shipping.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	productsService, err := products.NewService(productsRepo, shippingService)
	if err != nil {
		return err
	}
	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:     reviews.NewRepository(dbClient.DB()),
		Products: productsRepo,
		Logger:   logg,
	})
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cartRepo, productsRepo)
	if err != nil {
		return err
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:    cartRepo,
		Products: productsRepo,
		Shipping: shippingService,
		Gateway:  stripeClient,
		URLs: checkout.URLs{
			FrontendURL: cfg.App.FrontendURL,
			SuccessPath: cfg.Checkout.SuccessPath,
			CancelPath:  cfg.Checkout.CancelPath,
		},
		Logger: logg,
	})
	if err != nil {
		return err
	}

	engine, err := reconciliation.NewEngine(reconciliation.EngineParams{
		Tx:       dbClient,
		Orders:   ordersRepo,
		Carts:    cartRepo,
		Products: productsRepo,
		Users:    usersRepo,
		Shipping: shippingService,
		Notifier: notifier,
		Outbox:   outboxSvc,
		Metrics:  metrics.NewReconcileMetrics(registry),
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Tx:       dbClient,
		Outbox:   outboxSvc,
		Notifier: notifier,
		Logger:   logg,
	})
	if err != nil {
		return err
	}
	returnsService, err := returns.NewService(returns.ServiceParams{
		Repo:     returns.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Users:    usersRepo,
		Outbox:   outboxSvc,
		Notifier: notifier,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	eventGuard, err := stripewebhook.NewEventGuard(redisClient, webhookEventTTL)
	if err != nil {
		return err
	}
	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Reconciler: engine,
		Guard:      eventGuard,
		Metrics:    metrics.NewWebhookMetrics(registry),
		Logger:     logg,
	})
	if err != nil {
		return err
	}

	router := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:        dbClient,
		Redis:     redisClient,
		Sessions:  sessionManager,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		HTTP:      metrics.NewHTTPMetrics(registry),
		Auth:      authService,
		Users:     usersService,
		Products:  productsService,
		Reviews:   reviewsService,
		Shipping:  shippingService,
		Cart:      cartService,
		Checkout:  checkoutService,
		Payments:  reconciliation.NewChannels(engine, stripeClient),
		Orders:    ordersService,
		Returns:   returnsService,
		Webhooks:  webhookService,
		WebParser: stripeClient,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"instance":   instance.ID("api"),
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
