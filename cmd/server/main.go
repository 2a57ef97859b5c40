package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/isoko/internal"
	"github.com/dukerupert/isoko/internal/billing"
	"github.com/dukerupert/isoko/internal/cache"
	"github.com/dukerupert/isoko/internal/cookie"
	"github.com/dukerupert/isoko/internal/events"
	"github.com/dukerupert/isoko/internal/handler"
	"github.com/dukerupert/isoko/internal/handler/api"
	"github.com/dukerupert/isoko/internal/handler/webhook"
	"github.com/dukerupert/isoko/internal/jobs"
	"github.com/dukerupert/isoko/internal/middleware"
	"github.com/dukerupert/isoko/internal/repository"
	"github.com/dukerupert/isoko/internal/router"
	"github.com/dukerupert/isoko/internal/routes"
	"github.com/dukerupert/isoko/internal/service"
	"github.com/dukerupert/isoko/internal/shipping"
	"github.com/dukerupert/isoko/internal/tax"
	"github.com/dukerupert/isoko/internal/telemetry"
	"github.com/dukerupert/isoko/internal/worker"
)

const shutdownTimeout = 20 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Error tracking
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	telemetry.InitBusinessMetrics("isoko")
	metrics := middleware.NewMetrics("isoko")

	// Migrations run over database/sql with the pgx stdlib driver
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Application queries use a pgx pool
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	// Cart cache
	var cartCache cache.CartCache = cache.NoopCache{}
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer client.Close()
		cartCache = cache.NewRedisCache(client, cfg.Redis.CartCacheTTL)
		logger.Info("Cart cache enabled", "ttl", cfg.Redis.CartCacheTTL)
	}

	// Payment gateway
	gateway, err := billing.NewProvider(billing.Config{
		Provider: cfg.Payment.Provider,
		Timeout:  cfg.Payment.Timeout,
		Flutterwave: billing.FlutterwaveConfig{
			PublicKey:  cfg.Flutterwave.PublicKey,
			SecretKey:  cfg.Flutterwave.SecretKey,
			SecretHash: cfg.Flutterwave.SecretHash,
			BaseURL:    cfg.Flutterwave.BaseURL,
			HTTPClient: &http.Client{
				Timeout:   cfg.Payment.Timeout,
				Transport: &telemetry.HTTPTransport{},
			},
		},
		Stripe: billing.StripeConfig{
			APIKey:        cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
		},
	})
	if err != nil {
		return fmt.Errorf("payment provider initialization failed: %w", err)
	}
	if !gateway.WebhookSecured() {
		logger.Warn("payment webhooks are not authenticated", "gateway", gateway.Name())
	}

	// Pricing
	taxCalculator := tax.NewNoTaxCalculator()
	if cfg.Pricing.TaxRate > 0 {
		taxCalculator = tax.NewPercentageCalculator(cfg.Pricing.TaxRate)
	}
	pricer := service.NewPricer(
		taxCalculator,
		shipping.NewFlatRateProvider([]shipping.FlatRate{{
			ServiceName: "Standard delivery",
			ServiceCode: "standard",
			Cost:        cfg.Pricing.FlatShippingFee,
			DaysMin:     1,
			DaysMax:     3,
		}}, cfg.Pricing.FreeShippingThreshold),
		cfg.Pricing.Currency,
	)

	// Services
	catalogService := service.NewCatalogService(store, cfg.CatalogTimeout, logger)
	cartService := service.NewCartService(store, cartCache, pricer, logger)
	orderService := service.NewOrderService(store, gateway, pricer, service.OrderConfig{
		TxRefPrefix:    cfg.Payment.TxRefPrefix,
		RedirectURL:    cfg.Payment.RedirectURL,
		PaymentTimeout: cfg.Payment.Timeout,
	}, logger)
	paymentService := service.NewPaymentService(store, gateway, cartCache, service.PaymentConfig{
		Timeout: cfg.Payment.Timeout,
	}, logger)

	// Event publisher for the outbox relay
	publisher, err := newPublisher(cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("events backend initialization failed: %w", err)
	}
	defer publisher.Close()

	// Rate limiters
	apiLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer apiLimiter.Stop()
	checkoutLimiter := middleware.NewRateLimiter(middleware.CheckoutRateLimiterConfig())
	defer checkoutLimiter.Stop()
	webhookLimiter := middleware.NewRateLimiter(middleware.WebhookRateLimiterConfig())
	defer webhookLimiter.Stop()

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env != "prod" {
		securityConfig.HSTSMaxAge = 0
	}

	r := router.New(
		telemetry.SentryMiddleware(),
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithRequestLogger(logger),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(cfg.RequestTimeout),
		router.Logger(logger),
	)

	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		Health:  healthHandler(pool),
		Metrics: metrics.Handler(),
	})
	routes.RegisterAPIRoutes(r.Group(apiLimiter.Middleware), routes.APIDeps{
		Catalog:         api.NewCatalogHandler(catalogService, logger),
		Cart:            api.NewCartHandler(cartService, logger),
		Orders:          api.NewOrderHandler(orderService, logger),
		CookieConfig:    cookie.NewConfig(cfg.CookieDomain, cfg.Env == "prod"),
		CheckoutLimiter: checkoutLimiter,
	})
	routes.RegisterWebhookRoutes(r, routes.WebhookDeps{
		Payment: webhook.NewPaymentHandler(paymentService, webhook.PaymentHandlerConfig{
			Gateway:         gateway.Name(),
			SignatureHeader: gateway.SignatureHeader(),
		}, logger),
		Limiter: webhookLimiter,
	})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: r.Wrap(router.CORS(router.CORSConfig{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowCredentials: true,
		})),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "address", srv.Addr, "gateway", gateway.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Worker.Enabled {
		relay := worker.NewWorker(store, publisher, worker.Config{
			PollInterval: cfg.Worker.OutboxInterval,
		}, logger)
		g.Go(func() error { return ignoreCanceled(relay.Start(gctx)) })

		sweep := jobs.NewReconcileJob(paymentService, jobs.ReconcileConfig{
			Interval:  cfg.Worker.ReconcileInterval,
			OlderThan: cfg.Worker.ReconcileAfter,
		}, logger)
		g.Go(func() error { return ignoreCanceled(sweep.Start(gctx)) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// newPublisher picks the outbox destination from EVENTS_BACKEND.
func newPublisher(cfg internal.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.Backend {
	case "kafka":
		logger.Info("Publishing order events to Kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "nats":
		logger.Info("Publishing order events to NATS", "url", cfg.NATSURL, "prefix", cfg.NATSSubjectPrefix)
		return events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix)
	default:
		return events.NewLogPublisher(logger), nil
	}
}

// healthHandler reports 503 when the database is unreachable.
func healthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			handler.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
