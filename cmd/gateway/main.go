package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/croptivize/catalog/gateway/config"
	"github.com/croptivize/catalog/gateway/middleware"
	"github.com/croptivize/catalog/gateway/routes"
	"github.com/croptivize/catalog/kafka"
	"github.com/croptivize/catalog/pkg/logger"
	"github.com/croptivize/catalog/pkg/tracing"
)

func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "catalog-gateway")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Msg("Starting catalog gateway")

	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	cfg := config.LoadConfig()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", cfg.RedisAddr).
			Msg("Failed to connect to Redis - caching and rate limiting disabled")
		redisClient = nil
	} else {
		logger.Logger.Info().
			Str("redis_addr", cfg.RedisAddr).
			Msg("Connected to Redis")
	}

	// Invalidate cached catalog pages whenever a product changes.
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if redisClient != nil && len(cfg.KafkaBrokers) > 0 {
		startCacheInvalidation(consumerCtx, cfg.KafkaBrokers, redisClient)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Catalog Gateway",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	setupMiddleware(app, redisClient, cfg)
	routes.SetupRoutes(app, cfg)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Logger.Info().
			Str("addr", addr).
			Strs("catalog_instances", cfg.Catalog.Instances).
			Msg("Catalog gateway listening")

		if err := app.Listen(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down catalog gateway")
	stopConsumer()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
}

// setupMiddleware configures global middleware
func setupMiddleware(app *fiber.App, redisClient *redis.Client, cfg *config.GatewayConfig) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID first, tracing second, logging third so every log line
	// carries both IDs.
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLoggingMiddleware())

	if redisClient != nil {
		cacheConfig := middleware.DefaultCacheConfig()
		cacheConfig.DefaultTTL = cfg.CacheTTL
		app.Use(middleware.CacheMiddleware(redisClient, cacheConfig))
		logger.Logger.Info().
			Dur("ttl", cacheConfig.DefaultTTL).
			Msg("Response caching enabled (GET/HEAD only)")

		app.Use(middleware.GlobalRateLimiter(redisClient))
		logger.Logger.Info().Msg("Rate limiting enabled (100 req/min)")
	}

	allowOrigins := getEnv("CORS_ALLOWED_ORIGINS", "*")
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,PATCH,OPTIONS,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-Id, traceparent, tracestate",
		ExposeHeaders: "X-Request-Id, X-Trace-Id, X-Cache, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:        86400,
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// startCacheInvalidation subscribes to catalog events and drops cached pages
// on every product mutation.
func startCacheInvalidation(ctx context.Context, brokers []string, redisClient *redis.Client) {
	consumer, err := kafka.NewConsumer(brokers, "catalog-gateway", []string{kafka.TopicCatalogEvents})
	if err != nil {
		logger.Logger.Warn().
			Err(err).
			Msg("Kafka unavailable - cache invalidation relies on TTL only")
		return
	}

	invalidate := func(ctx context.Context, event kafka.CatalogEvent) error {
		logger.Logger.Info().
			Str("event_type", event.EventType).
			Uint("product_id", event.ProductID).
			Msg("Invalidating catalog cache")
		return middleware.InvalidateCatalogCache(ctx, redisClient)
	}
	consumer.RegisterHandler(kafka.EventTypeProductCreated, invalidate)
	consumer.RegisterHandler(kafka.EventTypeProductUpdated, invalidate)
	consumer.RegisterHandler(kafka.EventTypeProductDeleted, invalidate)

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to start Kafka consumer")
		return
	}

	go func() {
		<-ctx.Done()
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
	}()
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success":   false,
		"error":     err.Error(),
		"path":      c.Path(),
		"method":    c.Method(),
		"requestId": c.Get("X-Request-Id"),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
