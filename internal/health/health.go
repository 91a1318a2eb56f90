// Package health exposes the liveness report of the service and its
// backing services.
package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Broker is the part of the message broker client the check needs.
type Broker interface {
	IsClosed() bool
}

// Endpoints lists the dependencies to check. Nil entries are skipped.
type Endpoints struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	Broker      Broker
}

// New builds the health instance with one check per configured dependency.
// Cache and broker failures only degrade the report; a database failure makes
// the service unavailable.
func New(name, version string, endpoints Endpoints) (*health.Health, error) {
	var checks []health.Config

	if endpoints.DB != nil {
		db := endpoints.DB
		checks = append(checks, health.Config{
			Name:    "database",
			Timeout: 3 * time.Second,
			Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return fmt.Errorf("failed to get database handle: %w", err)
				}
				return sqlDB.PingContext(ctx)
			},
		})
	}

	if endpoints.RedisClient != nil {
		client := endpoints.RedisClient
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
		})
	}

	if endpoints.Broker != nil {
		broker := endpoints.Broker
		checks = append(checks, health.Config{
			Name:      "rabbitmq",
			Timeout:   time.Second,
			SkipOnErr: true,
			Check: func(context.Context) error {
				if broker.IsClosed() {
					return errors.New("rabbitmq connection is closed")
				}
				return nil
			},
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{Name: name, Version: version}),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}
	return h, nil
}

// Handler serves the health report.
func Handler(h *health.Health) fiber.Handler {
	return adaptor.HTTPHandler(h.Handler())
}
