// Package config loads the pricing service configuration from config.toml
// and PRICING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

// DatabaseConfig holds PostgreSQL connection and pool settings. Lifetimes
// are in minutes.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
}

// RedisConfig locates the effective price cache
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`
	// BulkConcurrency bounds the parallel lookups of a bulk effective-price request
	BulkConcurrency int `mapstructure:"bulk_concurrency"`
	MaxBatchItems   int `mapstructure:"max_batch_items"`
	// CORSAllowOrigins is empty by default, which rejects cross-origin requests
	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	SwaggerEnabled   bool     `mapstructure:"swagger_enabled"`
}

// TelemetryConfig holds OpenTelemetry export settings
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"` // plaintext gRPC, development only
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`

	ProfilingEnabled       bool     `mapstructure:"profiling_enabled"`
	ProfilingServerAddress string   `mapstructure:"profiling_server_address"` // Pyroscope
	ProfilingTypes         []string `mapstructure:"profiling_types"`
}

// PricingConfig holds price override engine settings
type PricingConfig struct {
	DefaultCurrency      string        `mapstructure:"default_currency"`
	MasterBookName       string        `mapstructure:"master_book_name"`
	DefaultStrategy      string        `mapstructure:"default_strategy"` // ASK, OVERWRITE, PRESERVE or RELATIVE
	CacheBackend         string        `mapstructure:"cache_backend"`    // redis or memory
	CacheTTL             time.Duration `mapstructure:"cache_ttl"`
	InvalidationChannel  string        `mapstructure:"invalidation_channel"`
	TransactionalUpdates bool          `mapstructure:"transactional_updates"` // one transaction per batch item
}

// defaults also registers every key with viper, which AutomaticEnv needs
// before Unmarshal will consult the environment for it.
var defaults = map[string]any{
	"app.name": "pricing-service",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "pricing",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      30 * time.Second,
	"http.idle_timeout":       60 * time.Second,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      int64(10 << 20),
	"http.bulk_concurrency":   8,
	"http.max_batch_items":    1000,
	"http.cors_allow_origins": []string{},
	"http.swagger_enabled":    true,

	"telemetry.enabled":                  false,
	"telemetry.collector_endpoint":       "localhost:4317",
	"telemetry.sampling_ratio":           1.0,
	"telemetry.service_name":             "pricing-service",
	"telemetry.insecure":                 false,
	"telemetry.metrics_enabled":          false,
	"telemetry.metrics_interval":         60 * time.Second,
	"telemetry.logs_enabled":             false,
	"telemetry.db_trace_enabled":         false,
	"telemetry.db_log_full_sql":          false,
	"telemetry.db_slow_query_threshold":  200 * time.Millisecond,
	"telemetry.profiling_enabled":        false,
	"telemetry.profiling_server_address": "http://localhost:4040",
	"telemetry.profiling_types":          []string{"cpu", "alloc_space", "inuse_space", "goroutines"},

	"pricing.default_currency":      "USD",
	"pricing.master_book_name":      "Master Price Book",
	"pricing.default_strategy":      "ASK",
	"pricing.cache_backend":         "redis",
	"pricing.cache_ttl":             10 * time.Minute,
	"pricing.invalidation_channel":  "pricing:invalidations",
	"pricing.transactional_updates": true,
}

// Load reads configuration. Environment variables with the PRICING_ prefix
// (PRICING_DATABASE_PASSWORD) win over config.toml, which wins over the
// built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// a variable set to "" overrides the default rather than being skipped
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServerAddress == "" {
		return fmt.Errorf("telemetry.profiling_server_address is required when profiling is enabled")
	}

	switch strings.ToUpper(c.Pricing.DefaultStrategy) {
	case "ASK", "OVERWRITE", "PRESERVE", "RELATIVE":
	default:
		return fmt.Errorf("pricing.default_strategy must be one of ASK, OVERWRITE, PRESERVE, RELATIVE, got %q", c.Pricing.DefaultStrategy)
	}
	switch c.Pricing.CacheBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("pricing.cache_backend must be 'redis' or 'memory', got %q", c.Pricing.CacheBackend)
	}
	if len(c.Pricing.DefaultCurrency) != 3 {
		return fmt.Errorf("pricing.default_currency must be a 3-letter ISO code, got %q", c.Pricing.DefaultCurrency)
	}
	if c.Pricing.CacheTTL < 0 {
		return fmt.Errorf("pricing.cache_ttl cannot be negative")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
