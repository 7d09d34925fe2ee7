package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbracken/njord/internal"
	"github.com/mbracken/njord/internal/auth"
	"github.com/mbracken/njord/internal/billing"
	"github.com/mbracken/njord/internal/handler"
	"github.com/mbracken/njord/internal/middleware"
	"github.com/mbracken/njord/internal/postgres"
	"github.com/mbracken/njord/internal/service"
	"github.com/mbracken/njord/internal/shipping"
	"github.com/mbracken/njord/internal/storage"
	"github.com/mbracken/njord/internal/tax"
	"github.com/mbracken/njord/internal/telemetry"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry error tracking
	sentryCleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
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
	defer sentryCleanup()

	// Run migrations over a database/sql connection
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for the application
	pool, err := postgres.NewPool(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	productStore := postgres.NewProductStore(pool)
	categoryStore := postgres.NewCategoryStore(pool)
	couponStore := postgres.NewCouponStore(pool)
	orderStore := postgres.NewOrderStore(pool)
	userStore := postgres.NewUserStore(pool)
	reviewStore := postgres.NewReviewStore(pool)
	analyticsStore := postgres.NewAnalyticsStore(pool)

	// Initialize providers
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenExpiryHours)*time.Hour)

	billingProvider := billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)

	shippingProvider := shipping.NewFlatRateProvider([]shipping.FlatRate{
		{Code: "standard", Name: "Standard Shipping", CostCents: cfg.Shipping.StandardCents, DaysMin: 3, DaysMax: 7},
		{Code: "express", Name: "Express Shipping", CostCents: cfg.Shipping.ExpressCents, DaysMin: 1, DaysMax: 2},
	}, cfg.Shipping.FreeOverCents)

	taxCalculator := tax.NewNoTaxCalculator()
	if cfg.Tax.Rate > 0 {
		taxCalculator, err = tax.NewPercentageCalculator(cfg.Tax.Rate)
		if err != nil {
			return fmt.Errorf("failed to initialize tax calculator: %w", err)
		}
	}

	fileStorage, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize services
	inventoryService := service.NewInventoryService(productStore, logger)
	cartService := service.NewCartService(productStore)
	couponService := service.NewCouponService(couponStore)
	productService := service.NewProductService(productStore)
	categoryService := service.NewCategoryService(categoryStore)
	orderService := service.NewOrderService(orderStore, productStore, inventoryService, couponService, shippingProvider, taxCalculator, logger)
	checkoutService := service.NewCheckoutService(cartService, couponService, shippingProvider, taxCalculator)
	reviewService := service.NewReviewService(reviewStore, productStore)
	userService := service.NewUserService(userStore, productStore)
	accountService := service.NewAccountService(userStore, jwtService)
	analyticsService := service.NewAnalyticsService(analyticsStore)

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("njord")

	r := handler.NewRouter(handler.Deps{
		Accounts:   accountService,
		Products:   productService,
		Categories: categoryService,
		Cart:       cartService,
		Checkout:   checkoutService,
		Coupons:    couponService,
		Orders:     orderService,
		Reviews:    reviewService,
		Users:      userService,
		Analytics:  analyticsService,

		Billing: billingProvider,
		Storage: fileStorage,
		JWT:     jwtService,
		Logger:  logger,
		Metrics: metrics,

		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-shutdownCtx.Done():
	}

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
