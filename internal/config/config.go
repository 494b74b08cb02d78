package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the effective configuration for both the API server and the
// migration dispatcher. Values come from the environment, optionally
// seeded from .env files.
type Config struct {
	AppName     string `env:"APP_NAME" envDefault:"web-starter"`
	Environment string `env:"ENVIRONMENT" envDefault:"development" validate:"oneof=development staging production test"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	LogFile     string `env:"LOG_FILE"`

	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Migrator MigratorConfig `envPrefix:"MIGRATOR_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
}

type HTTPConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8000" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	SlowRequest     time.Duration `env:"SLOW_REQUEST_THRESHOLD" envDefault:"1s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432" validate:"min=1,max=65535"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"web_starter"`
	SSLMode  string `env:"SSL_MODE" envDefault:"prefer" validate:"oneof=disable allow prefer require verify-ca verify-full"`

	MaxConns          int32         `env:"MAX_CONNS" envDefault:"10" validate:"min=1"`
	MinConns          int32         `env:"MIN_CONNS" envDefault:"2" validate:"min=0"`
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// MigratorConfig points the dispatcher at the external migration engine.
type MigratorConfig struct {
	Bin        string `env:"BIN" envDefault:"alembic"`
	ConfigFile string `env:"CONFIG"`
	WorkDir    string `env:"WORKDIR"`
}

type AuthConfig struct {
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// Argon2id parameters used for password hashing.
	ArgonTime      uint32 `env:"ARGON_TIME" envDefault:"2" validate:"min=1"`
	ArgonMemoryKiB uint32 `env:"ARGON_MEMORY_KIB" envDefault:"102400" validate:"min=8192"`
	ArgonThreads   uint8  `env:"ARGON_THREADS" envDefault:"8" validate:"min=1"`
}

var validate = validator.New()

// Load reads the given .env files (missing files are skipped), then parses
// and validates the environment. With no arguments it tries .env and
// .env.local, matching local development layouts.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

// DSN renders the database connection string in URL form, the shape both
// pgx and the migration engine's environment script accept.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
