package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

var defaultCategories = []string{"Books", "Electronics", "Computers"}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	os.Exit(exitCode(zapLog, run(cfg, zapLog)))
}

// exitCode logs a failed run and flushes the logger, since os.Exit skips
// deferred calls.
func exitCode(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Redis (optional) ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis is unreachable, product cache will miss", zap.Error(err))
		}
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQ.URL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close()

		log.Info("Starting RabbitMQ audit consumer", zap.String("queue", cfg.RabbitMQ.Queue))
		if err := mqClient.Consume(auditHandler(log)); err != nil {
			log.Error("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	app, authService, err := server.New(cfg, server.Infra{DB: db, Redis: redisClient, Broker: mqClient}, log)
	if err != nil {
		return err
	}

	if err := seed(ctx, cfg, db, authService, log); err != nil {
		return err
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		listenErr <- app.Listen(cfg.Port)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
	return nil
}

// seed creates the administrator when a password is configured and the
// default categories on an empty catalog.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB, authService *services.AuthService, log *zap.Logger) error {
	if cfg.Auth.AdminPassword != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	} else {
		log.Warn("ADMIN_PASSWORD is empty, no administrator was seeded")
	}

	categories := repositories.NewGORMCategoryRepository(db)
	count, err := categories.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, name := range defaultCategories {
		if err := categories.Create(ctx, &models.Category{Name: name}); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", name, err)
		}
	}
	log.Info("Seeded default categories", zap.Strings("categories", defaultCategories))
	return nil
}

// auditHandler logs every domain event. Undecodable messages are rejected.
func auditHandler(log *zap.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event rabbitmq.Event
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		log.Info("Received event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Time("occurred_at", event.OccurredAt),
			zap.Uint64("delivery_tag", msg.DeliveryTag))
		return nil
	}
}
