// Package config loads gateway configuration from the environment and from
// the providers config file.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config is the top-level gateway configuration.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Supabase  SupabaseConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Coinbase  CoinbaseConfig
	Stripe    StripeConfig
	MoonPay   MoonPayConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string `env:"HOST,default=0.0.0.0"`
	Port            int    `env:"PORT,default=8080"`
	ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT_SECONDS,default=10"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=json"`
}

// CORSConfig holds the browser origin allow-list.
type CORSConfig struct {
	// AllowedOrigins is a semicolon-separated allow-list. The
	// Access-Control-Allow-Origin header is only set for matching origins.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=https://app.vertexpay.io;https://www.vertexpay.io"`
}

// RateLimitConfig bounds per-caller request rates on the onramp endpoints.
type RateLimitConfig struct {
	RequestsPerSecond int `env:"RATE_LIMIT_RPS,default=10"`
	Burst             int `env:"RATE_LIMIT_BURST,default=20"`
}

// SupabaseConfig holds the hosted backend connection settings.
type SupabaseConfig struct {
	URL        string `env:"SUPABASE_URL"`
	AnonKey    string `env:"SUPABASE_ANON_KEY"`
	ServiceKey string `env:"SUPABASE_SERVICE_KEY"`
	JWTSecret  string `env:"SUPABASE_JWT_SECRET"`
}

// DatabaseConfig configures the optional direct Postgres store.
type DatabaseConfig struct {
	Driver          string `env:"DB_DRIVER"`
	DSN             string `env:"DB_DSN"`
	MaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime int    `env:"DB_CONN_MAX_LIFETIME_SECONDS,default=300"`
}

// RedisConfig configures the transient error-log tier.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,default=0"`
}

// CoinbaseConfig holds the Coinbase onramp signing credentials.
type CoinbaseConfig struct {
	APIKey    string `env:"COINBASE_API_KEY"`
	APISecret string `env:"COINBASE_API_SECRET"`
	BaseURL   string `env:"COINBASE_API_URL,default=https://api.developer.coinbase.com"`
}

// StripeConfig holds the Stripe onramp credentials.
type StripeConfig struct {
	SecretKey string `env:"STRIPE_SECRET_KEY"`
	BaseURL   string `env:"STRIPE_API_URL,default=https://api.stripe.com"`
}

// MoonPayConfig holds the MoonPay widget signing secret.
type MoonPayConfig struct {
	SecretKey string `env:"MOONPAY_SECRET_KEY"`
}

// Load reads configuration from a .env file (when present) and the process
// environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment is authoritative.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
