package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"dev"`
	ProdOrigins string `env:"PROD_ORIGINS"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	DBDSN      string `env:"DB_DSN,required"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`

	JWTSecret          string        `env:"JWT_SECRET,required"`
	JWTAccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
	JWTRefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" envDefault:"168h"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"12"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Optional; in-memory token stores are used when empty.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Optional; events are only logged when empty.
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"rental.events"`

	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"local"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"./uploads"`
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"property-photos"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"1"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"5"`
}

// IsProduction reports whether APP_ENV selects production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == PROD_STRING
}

// Origins splits PROD_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.ProdOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the rules the struct tags cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBDSN) == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTAccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if c.JWTRefreshTokenTTL <= c.JWTAccessTokenTTL {
		return fmt.Errorf("JWT_REFRESH_TOKEN_TTL must be longer than JWT_ACCESS_TOKEN_TTL")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst < 1 {
		return fmt.Errorf("AUTH_RATE_LIMIT_RPS and AUTH_RATE_LIMIT_BURST must be positive")
	}

	switch c.StorageDriver {
	case "local":
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the local storage driver")
		}
	case "minio":
		if c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() && len(c.Origins()) == 0 {
		return fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}
	return nil
}
