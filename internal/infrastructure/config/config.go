package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development" validate:"oneof=development staging production test"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	State   StateConfig
	Catalog CatalogConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig points at the storefront backend.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=https://shreenathmobis.in/api1" validate:"required,url"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=15s"`
}

// StateConfig selects where session, filters and the order draft live.
type StateConfig struct {
	Backend string `env:"STATE_BACKEND,    default=redis" validate:"oneof=redis mongo memory"`
	SealKey string `env:"SESSION_SEAL_KEY"`
}

type CatalogConfig struct {
	FilterDebounce time.Duration `env:"FILTER_DEBOUNCE, default=600ms"`
	LoadMoreDelay  time.Duration `env:"LOAD_MORE_DELAY, default=500ms"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=storefront"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l. Tests pass a map lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Pretty reports whether logs should be human readable.
func (c *Config) Pretty() bool {
	return c.Env == "development"
}
