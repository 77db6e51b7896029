package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "storefront-api")
	logger.Info().Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	itemRepo := repository.NewItemRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	lineItemRepo := repository.NewLineItemRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	repos := service.Repositories{
		Orders:    orderRepo,
		LineItems: lineItemRepo,
		Addresses: repository.NewAddressRepository(pool, logger),
		Payments:  repository.NewPaymentRepository(pool, logger),
		Refunds:   repository.NewRefundRepository(pool, logger),
	}

	if len(cfg.Coupon.ImportFiles) > 0 {
		importer := coupon.NewImporter(coupon.NewConfiguredLoader(ctx, cfg.S3, logger), couponRepo, logger)
		if _, err := importer.Import(ctx, cfg.Coupon.ImportFiles); err != nil {
			return fmt.Errorf("failed to import coupons: %w", err)
		}
	}

	itemCache, closeCache, err := newItemCache(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	publisher := newPublisher(cfg.Kafka, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	catalogService := service.NewCatalogService(itemRepo, itemCache, logger)
	cartService := service.NewCartService(
		catalogService,
		orderRepo,
		lineItemRepo,
		coupon.NewResolver(couponRepo, logger),
		logger,
	)
	orderService := service.NewOrderService(
		repos,
		payment.NewStripeCharger(cfg.Stripe, logger),
		publisher,
		logger,
	)

	mux := router.New(router.Handlers{
		Items:  handler.NewItemHandler(catalogService, logger),
		Cart:   handler.NewCartHandler(cartService, logger),
		Orders: handler.NewOrderHandler(orderService, logger),
	}, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newItemCache returns the Redis-backed catalogue cache, or a no-op cache when Redis is disabled.
func newItemCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (cache.ItemCache, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("item cache disabled")
		return cache.NopCache{}, func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Dur("ttl", cfg.TTL).Msg("item cache enabled")
	return cache.NewRedisCache(client, cfg.TTL), func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}, nil
}

// newPublisher returns the Kafka publisher, or a no-op publisher when Kafka is disabled.
func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled")
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(cfg, logger)
}
