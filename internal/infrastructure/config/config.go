package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development" validate:"oneof=development staging production test"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Backend BackendConfig
	Polling PollingConfig
	Map     MapConfig
	Redis   RedisConfig
	Feed    FeedConfig
}

type BackendConfig struct {
	BaseURL      string        `env:"BACKEND_BASE_URL,       default=http://localhost:8000" validate:"required,url"`
	JWTSecret    string        `env:"BACKEND_JWT_SECRET"`
	Timeout      time.Duration `env:"BACKEND_TIMEOUT,        default=10s"                   validate:"gt=0"`
	MaxErrorBody int           `env:"BACKEND_MAX_ERROR_BODY, default=512"                   validate:"gte=0,lte=65536"`
}

type PollingConfig struct {
	// Interval is deliberately coarse; sub-second polling floods the backend.
	Interval time.Duration `env:"POLL_INTERVAL, default=3s" validate:"gte=500ms"`
	Subject  string        `env:"TRACK_SUBJECT"`
}

type MapConfig struct {
	BaseLayer string  `env:"MAP_BASE_LAYER, default=osm"      validate:"required"`
	CenterLat float64 `env:"MAP_CENTER_LAT, default=19.4326"  validate:"gte=-90,lte=90"`
	CenterLng float64 `env:"MAP_CENTER_LNG, default=-99.1332" validate:"gte=-180,lte=180"`
	Zoom      int     `env:"MAP_ZOOM,       default=12"       validate:"gte=0,lte=22"`
}

type RedisConfig struct {
	// Addr empty disables the live marker feed.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type FeedConfig struct {
	Workers int `env:"FEED_WORKERS, default=4" validate:"gte=1,lte=64"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Development reports whether human-friendly logging should be used.
func (c *Config) Development() bool {
	return c.Env == "development"
}
