// Package server assembles the fiber application from configuration and
// infrastructure handles.
package server

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/health"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

const loginLimiterTTL = 10 * time.Minute

// Infra holds the connections the application runs on. Redis and Broker are
// optional.
type Infra struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Broker *rabbitmq.Client
}

// New wires repositories, services and handlers into a fiber app. The auth
// service is returned for seeding and for tests that need tokens.
func New(cfg *config.Config, infra Infra, log *zap.Logger) (*fiber.App, *services.AuthService, error) {
	if infra.DB == nil {
		return nil, nil, fmt.Errorf("database is required")
	}

	// Initialize Repositories
	tx := repositories.NewTxManager(infra.DB)
	productRepo := repositories.NewGORMProductRepository(infra.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(infra.DB)
	orderRepo := repositories.NewGORMOrderRepository(infra.DB)
	userRepo := repositories.NewGORMUserRepository(infra.DB)

	var productCache cache.Cache
	if infra.Redis != nil {
		productCache = cache.NewRedisCache(infra.Redis, cfg.Redis.CacheTTL)
	}

	// A typed nil *rabbitmq.Client must not leak into the interfaces.
	var publisher services.EventPublisher
	var broker health.Broker
	if infra.Broker != nil {
		publisher = infra.Broker
		broker = infra.Broker
	}

	// Initialize Services
	productService := services.NewProductService(tx, productRepo, productCache, publisher, log)
	categoryService := services.NewCategoryService(tx, categoryRepo)
	orderService := services.NewOrderService(tx, orderRepo, productRepo, publisher, log)
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)

	healthCheck, err := health.New(cfg.Name, cfg.Version, health.Endpoints{
		DB:          infra.DB,
		RedisClient: infra.Redis,
		Broker:      broker,
	})
	if err != nil {
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(metrics.Middleware())
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())

	app.Get("/health", health.Handler(healthCheck))
	app.Get("/metrics", metrics.Handler())

	authRequired := middleware.AuthRequired(authService, log)
	loginLimiter := middleware.NewRateLimiter(rate.Limit(cfg.Auth.LoginRate), cfg.Auth.LoginBurst, loginLimiterTTL)

	handlers.NewAuthHandler(authService).RegisterRoutes(app, loginLimiter.Handler())
	handlers.NewProductHandler(productService).RegisterRoutes(app, authRequired)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(app)
	handlers.NewOrderHandler(orderService).RegisterRoutes(app, authRequired)

	return app, authService, nil
}
