package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	StateBackendMemory   = "memory"
	StateBackendPostgres = "postgres"
)

type Config struct {
	HTTPPort       string        `envconfig:"STOREFRONT_PORT" default:":8090"`
	GrpcPort       string        `envconfig:"GRPC_PORT"       default:":50060"` // health + reflection
	LogLevel       string        `envconfig:"LOG_LEVEL"       default:"info"`
	BackendURL     string        `envconfig:"BACKEND_URL"     default:"http://localhost:5000"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	StateBackend   string        `envconfig:"STATE_BACKEND"   default:"memory"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	StateNamespace string        `envconfig:"STATE_NAMESPACE" default:"default"`

	FreeDeliveryThreshold int64    `envconfig:"FREE_DELIVERY_THRESHOLD" default:"500"`
	DeliveryFee           int64    `envconfig:"DELIVERY_FEE"            default:"40"`
	AllowedOrigins        []string `envconfig:"ALLOWED_ORIGINS"         default:"*"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		if err := config.validate(); err != nil {
			logger.Fatalf("Configuration error: %v", err)
		}

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s, Backend=%s, StateBackend=%s",
			config.HTTPPort, config.GrpcPort, config.LogLevel, config.BackendURL, config.StateBackend)
	})
	return &config
}

func (c *Config) validate() error {
	switch c.StateBackend {
	case StateBackendMemory:
	case StateBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STATE_BACKEND=%s", StateBackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q, expected %s or %s", c.StateBackend, StateBackendMemory, StateBackendPostgres)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is not set")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.FreeDeliveryThreshold < 0 || c.DeliveryFee < 0 {
		return fmt.Errorf("delivery threshold and fee cannot be negative")
	}
	return nil
}

func (c *Config) FreeDeliveryThresholdAmount() decimal.Decimal {
	return decimal.NewFromInt(c.FreeDeliveryThreshold)
}

func (c *Config) DeliveryFeeAmount() decimal.Decimal {
	return decimal.NewFromInt(c.DeliveryFee)
}
