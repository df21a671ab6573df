package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dartline-Delivery/service-pricing/internal/application"
	"github.com/Dartline-Delivery/service-pricing/internal/config"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	pricingEvents "github.com/Dartline-Delivery/service-pricing/internal/events"
	"github.com/Dartline-Delivery/service-pricing/internal/handler"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/database"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/health"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/kafka"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/logger"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/middleware"
	"github.com/Dartline-Delivery/service-pricing/internal/repository"
	"github.com/Dartline-Delivery/service-pricing/internal/routing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-pricing")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-pricing",
		zap.String("port", cfg.Port),
		zap.String("routing_provider", cfg.Routing.Provider),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.QuoteModel{}, &repository.TariffModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize routing provider
	provider, err := buildProvider(cfg, log)
	if err != nil {
		log.Fatal("failed to build routing provider", zap.Error(err))
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	quoteRepo := repository.NewGormQuoteRepository(db)
	tariffRepo := repository.NewGormTariffRepository(db)

	// Initialize tariff service from the config seed, then overlay the
	// stored plan.
	tariffService, err := application.NewTariffService(tariffRepo, kafkaProducer, seedPlanFromConfig(cfg), log)
	if err != nil {
		log.Fatal("invalid tariff configuration", zap.Error(err))
	}
	if err := tariffService.Load(context.Background()); err != nil {
		log.Fatal("failed to load tariff plan", zap.Error(err))
	}

	// Initialize quote service
	quoteService := application.NewQuoteService(quoteRepo, tariffService, provider, kafkaProducer, log)

	// Initialize and start the tariff event consumer in a goroutine. The
	// group ID is unique per replica so every instance sees every update.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "pricing-tariff." + uuid.NewString()
	tariffConsumer := pricingEvents.NewTariffEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		tariffService,
		log,
	)
	defer func() { _ = tariffConsumer.Close() }()

	go func() {
		log.Info("starting tariff event consumer", zap.String("group_id", groupID))
		if err := tariffConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("tariff event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	quoteHandler := handler.NewQuoteHandler(quoteService)
	tariffHandler := handler.NewTariffHandler(tariffService)
	adminHandler := handler.NewAdminQuoteHandler(quoteService)
	calculatorHandler := handler.NewCalculatorHandler(quoteService, quoteDomain.VehicleClass(cfg.Pricing.DefaultClass), log)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-pricing")
	healthHandler.RegisterRoutes(router)

	// Register routes
	quoteHandler.RegisterRoutes(&router.RouterGroup)
	tariffHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup)
	calculatorHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-pricing...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-pricing stopped")
}

// buildProvider constructs the routing provider named in the config,
// wrapped in the Redis route cache when one is configured.
func buildProvider(cfg *config.ServiceConfig, log *zap.Logger) (routing.Provider, error) {
	httpClient := &http.Client{Timeout: cfg.Routing.Timeout}

	var provider routing.Provider
	switch cfg.Routing.Provider {
	case "osrm":
		provider = routing.NewOSRMClient(httpClient, cfg.Routing.OSRMBaseURL)
	case "2gis":
		if cfg.Routing.DGISAPIKey == "" {
			return nil, fmt.Errorf("2gis provider requires an API key")
		}
		provider = routing.NewDGISClient(httpClient, cfg.Routing.DGISAPIKey)
	case "google":
		if cfg.Routing.GoogleAPIKey == "" {
			return nil, fmt.Errorf("google provider requires an API key")
		}
		googleClient, err := routing.NewGoogleClient(cfg.Routing.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google maps client: %w", err)
		}
		provider = googleClient
	default:
		return nil, fmt.Errorf("unknown routing provider: %s", cfg.Routing.Provider)
	}

	if cfg.RedisConfig.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisConfig.Addr})
		provider = routing.NewCachingProvider(provider, rdb, cfg.RedisConfig.CacheTTL, log)
		log.Info("route cache enabled",
			zap.String("redis_addr", cfg.RedisConfig.Addr),
			zap.Duration("ttl", cfg.RedisConfig.CacheTTL),
		)
	}

	return provider, nil
}

// seedPlanFromConfig converts the configured tariffs to a domain plan.
func seedPlanFromConfig(cfg *config.ServiceConfig) quoteDomain.TariffPlan {
	plan := make(quoteDomain.TariffPlan, len(cfg.Pricing.Tariffs))
	for class, tc := range cfg.Pricing.Tariffs {
		plan[quoteDomain.VehicleClass(class)] = quoteDomain.Tariff{
			RatePerKm:    tc.RatePerKm,
			MinimumPrice: tc.MinimumPrice,
			Currency:     cfg.Pricing.Currency,
		}
	}
	return plan
}
