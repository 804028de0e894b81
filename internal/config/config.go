package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Martin-Sil21/obraseco-sql-legacy/pkg/config"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/validator"
)

// Config holds all configuration for the catalog service. Stock database
// settings and the search API token are required; everything else defaults
// to the values the legacy deployment ran with.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"5000" validate:"gte=1,lte=65535"`

	// Stock database (source of truth, read-only)
	StockDBHost     string `env:"STOCK_DB_HOST" validate:"required"`
	StockDBPort     int    `env:"STOCK_DB_PORT" envDefault:"5432" validate:"gte=1,lte=65535"`
	StockDBName     string `env:"STOCK_DB_NAME" validate:"required"`
	StockDBUser     string `env:"STOCK_DB_USER" validate:"required"`
	StockDBPassword string `env:"STOCK_DB_PASSWORD" validate:"required"`
	StockDBSSLMode  string `env:"STOCK_DB_SSLMODE" envDefault:"disable"`

	// Database pool
	DBMaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10" validate:"gte=1"`
	DBMinConns int32 `env:"DB_MIN_CONNS" envDefault:"0" validate:"gte=0"`

	// Search API shared secret. Boot fails when unset.
	APIToken string `env:"API_TOKEN" validate:"required"`

	// Mirror store (optional; unset disables the sync pipeline and scheduler)
	MirrorURL string `env:"MIRROR_URL" validate:"omitempty,url"`
	MirrorKey string `env:"MIRROR_KEY"`

	// Sync pipeline
	SyncBatchSize      int           `env:"SYNC_BATCH_SIZE" envDefault:"1000" validate:"gte=1"`
	SyncPeriod         time.Duration `env:"SYNC_PERIOD" envDefault:"8h" validate:"gt=0"`
	SchedulerPoll      time.Duration `env:"SCHEDULER_POLL_INTERVAL" envDefault:"1m" validate:"gt=0"`
	SyncQueryTimeout   time.Duration `env:"SYNC_QUERY_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	SearchQueryTimeout time.Duration `env:"SEARCH_QUERY_TIMEOUT" envDefault:"5s" validate:"gt=0"`

	// Kafka (optional; empty disables sync run events)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," validate:"omitempty,dive,hostname_port"`

	// OpenTelemetry (disabled unless an endpoint is set)
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0" validate:"gte=0,lte=1"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500" validate:"gte=0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if err := validator.Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if (c.MirrorURL == "") != (c.MirrorKey == "") {
		return fmt.Errorf("MIRROR_URL and MIRROR_KEY must be set together")
	}
	return nil
}

// MirrorEnabled reports whether the mirror store is configured.
func (c *Config) MirrorEnabled() bool {
	return c.MirrorURL != "" && c.MirrorKey != ""
}

// EventsEnabled reports whether Kafka brokers are configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
