// Package config loads runtime settings from the environment through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "dev_jwt_secret_change_me"

type Config struct {
	Env      string
	Port     string
	Name     string
	Version  string
	LogLevel string

	Database Database
	Auth     Auth
	Redis    Redis
	RabbitMQ RabbitMQ
}

type Database struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	SlowQueryThreshold time.Duration
}

type Auth struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	// LoginRate is the sustained number of login attempts per second allowed
	// for one client IP.
	LoginRate  float64
	LoginBurst int
}

// Redis caching is disabled when Addr is empty.
type Redis struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// Event publishing is disabled when URL is empty.
type RabbitMQ struct {
	URL      string
	Exchange string
	Queue    string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration from v after registering defaults for every key.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		Port:     v.GetString("APP_PORT"),
		Name:     v.GetString("APP_NAME"),
		Version:  v.GetString("APP_VERSION"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: Database{
			Driver:             v.GetString("DB_DRIVER"),
			DSN:                v.GetString("DATABASE_DSN"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			SlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
		},
		Auth: Auth{
			JWTSecret:     v.GetString("JWT_SECRET"),
			TokenTTL:      v.GetDuration("JWT_TTL"),
			AdminUsername: v.GetString("ADMIN_USERNAME"),
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
			LoginRate:     v.GetFloat64("LOGIN_RATE_LIMIT"),
			LoginBurst:    v.GetInt("LOGIN_RATE_BURST"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CacheTTL: v.GetDuration("CACHE_TTL"),
		},
		RabbitMQ: RabbitMQ{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
			Queue:    v.GetString("RABBITMQ_QUEUE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_NAME", "storefront")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=storefront port=5432 sslmode=disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_SLOW_QUERY_THRESHOLD", "200ms")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@storefront.local")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("LOGIN_RATE_LIMIT", 1.0)
	v.SetDefault("LOGIN_RATE_BURST", 5)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "storefront.events")
	v.SetDefault("RABBITMQ_QUEUE", "storefront.audit")
}

func (c *Config) validate() error {
	if c.Port == "" {
		return errors.New("APP_PORT must not be empty")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}
