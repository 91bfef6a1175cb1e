package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Feed      FeedConfig
	Auth      AuthConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port       int
	Host       string
	CORSOrigin string
}

// FeedConfig holds listing configuration
type FeedConfig struct {
	PageSize      int
	IndexCacheTTL time.Duration
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	LoginURL  string
}

// MediaConfig holds uploaded image storage configuration
type MediaConfig struct {
	Root string
	URL  string
}

// RateLimitConfig limits write requests per client IP
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	ServiceName       string
	SentryDSN         string
	Environment       string
}

// Load loads configuration from .env, environment variables and config file
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("YATUBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.yatube")
	viper.AddConfigPath("/etc/yatube")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			URL: viper.GetString("database_url"),
		},
		Redis: RedisConfig{
			URL:     viper.GetString("redis_url"),
			Enabled: viper.GetString("redis_url") != "",
		},
		Server: ServerConfig{
			Port:       viper.GetInt("http_server_port"),
			Host:       viper.GetString("http_server_host"),
			CORSOrigin: viper.GetString("cors_origin"),
		},
		Feed: FeedConfig{
			PageSize:      viper.GetInt("posts_per_page"),
			IndexCacheTTL: GetDuration("index_cache_ttl", 20*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("jwt_secret"),
			TokenTTL:  GetDuration("token_ttl", 24*time.Hour),
			LoginURL:  viper.GetString("login_url"),
		},
		Media: MediaConfig{
			Root: viper.GetString("media_root"),
			URL:  viper.GetString("media_url"),
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("rate_limit_enabled"),
			RPS:     viper.GetFloat64("rate_limit_rps"),
			Burst:   viper.GetInt("rate_limit_burst"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           viper.GetBool("telemetry_enabled"),
			JaegerURL:         viper.GetString("jaeger_url"),
			PrometheusEnabled: viper.GetBool("prometheus_enabled"),
			ServiceName:       viper.GetString("service_name"),
			SentryDSN:         viper.GetString("sentry_dsn"),
			Environment:       viper.GetString("environment"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_url", "sqlite://yatube.db")
	viper.SetDefault("redis_url", "")
	viper.SetDefault("http_server_port", 8000)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("cors_origin", "*")
	viper.SetDefault("posts_per_page", 10)
	viper.SetDefault("index_cache_ttl", "20s")
	viper.SetDefault("token_ttl", "24h")
	viper.SetDefault("login_url", "/auth/login/")
	viper.SetDefault("media_root", "media")
	viper.SetDefault("media_url", "/media/")
	viper.SetDefault("rate_limit_enabled", true)
	viper.SetDefault("rate_limit_rps", 1.0)
	viper.SetDefault("rate_limit_burst", 5)
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("jaeger_url", "http://localhost:14268/api/traces")
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("service_name", "yatube")
	viper.SetDefault("sentry_dsn", "")
	viper.SetDefault("environment", "development")
}

// minJWTSecretLen is the shortest accepted HS256 signing secret
const minJWTSecretLen = 32

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database_url is required")
	}
	if !hasAnyPrefix(c.Database.URL, "postgres://", "postgresql://", "sqlite://") {
		return fmt.Errorf("database_url must start with postgres://, postgresql:// or sqlite://")
	}
	if c.Feed.PageSize <= 0 || c.Feed.PageSize > 100 {
		return fmt.Errorf("posts_per_page must be between 1 and 100")
	}
	if c.Feed.IndexCacheTTL <= 0 {
		return fmt.Errorf("index_cache_ttl must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("jwt_secret must be at least %d bytes", minJWTSecretLen)
	}
	if c.Auth.LoginURL == "" {
		return fmt.Errorf("login_url is required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit_rps and rate_limit_burst must be positive")
	}
	return nil
}

// GetDuration returns a duration from config key, with default
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	if viper.IsSet(key) {
		if d := viper.GetDuration(key); d > 0 {
			return d
		}
	}
	return defaultValue
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
