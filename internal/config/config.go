// Package config loads the server configuration from the environment (optionally
// seeded from a .env file) and the CLI configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/comitanigiacomo/habitflow-engine/internal/adapters/ai"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required")
	ErrInvalidStorage   = errors.New("STORAGE_DRIVER must be postgres, sqlite or memory")
)

type DatabaseConfig struct {
	// Driver is the database/sql driver used for Postgres: "pgx" or "postgres" (lib/pq).
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type Config struct {
	Port     string
	GinMode  string
	Location *time.Location

	Storage    string
	Database   DatabaseConfig
	SQLitePath string
	Redis      RedisConfig

	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration

	RateLimit       int
	RateLimitWindow time.Duration
	// CORSOrigins empty means any origin.
	CORSOrigins []string

	AI ai.Config
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	tzName := GetEnvAsString("HABITFLOW_TZ", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid HABITFLOW_TZ %q: %w", tzName, err)
	}

	cfg := &Config{
		Port:     GetEnvAsString("PORT", "8080"),
		GinMode:  GetEnvAsString("GIN_MODE", "debug"),
		Location: loc,

		Storage: strings.ToLower(GetEnvAsString("STORAGE_DRIVER", StoragePostgres)),
		Database: DatabaseConfig{
			Driver:   GetEnvAsString("DB_DRIVER", "pgx"),
			Host:     GetEnvAsString("DB_HOST", "localhost"),
			Port:     GetEnvAsString("DB_PORT", "5432"),
			User:     GetEnvAsString("DB_USER", "habitflow_user"),
			Password: GetEnvAsString("DB_PASSWORD", ""),
			Name:     GetEnvAsString("DB_NAME", "habitflow_db"),
			SSLMode:  GetEnvAsString("DB_SSLMODE", "disable"),
		},
		SQLitePath: GetEnvAsString("SQLITE_PATH", DefaultDBPath()),
		Redis: RedisConfig{
			Enabled:  GetEnvAsBool("REDIS_ENABLED", false),
			URL:      GetEnvAsString("REDIS_URL", ""),
			Host:     GetEnvAsString("REDIS_HOST", "localhost"),
			Port:     GetEnvAsString("REDIS_PORT", "6379"),
			Password: GetEnvAsString("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
			CacheTTL: GetEnvAsDuration("REDIS_CACHE_TTL", 30*time.Minute),
		},

		JWTSecret:   GetEnvAsString("JWT_SECRET", ""),
		JWTIssuer:   GetEnvAsString("JWT_ISSUER", "habitflow-engine"),
		JWTDuration: GetEnvAsDuration("JWT_DURATION", 24*time.Hour),

		RateLimit:       GetEnvAsInt("RATE_LIMIT", 100),
		RateLimitWindow: GetEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		CORSOrigins:     GetEnvAsList("CORS_ALLOWED_ORIGINS"),

		AI: ai.Config{
			Default: GetEnvAsString("AI_PROVIDER", ""),
			Timeout: GetEnvAsDuration("AI_TIMEOUT", 30*time.Second),
			OpenAI: ai.ProviderConfig{
				APIKey:  GetEnvAsString("OPENAI_API_KEY", ""),
				BaseURL: GetEnvAsString("OPENAI_BASE_URL", ""),
				Model:   GetEnvAsString("OPENAI_MODEL", ""),
			},
			Anthropic: ai.ProviderConfig{
				APIKey:  GetEnvAsString("ANTHROPIC_API_KEY", ""),
				BaseURL: GetEnvAsString("ANTHROPIC_BASE_URL", ""),
				Model:   GetEnvAsString("ANTHROPIC_MODEL", ""),
			},
			Gemini: ai.ProviderConfig{
				APIKey:  GetEnvAsString("GEMINI_API_KEY", ""),
				BaseURL: GetEnvAsString("GEMINI_BASE_URL", ""),
				Model:   GetEnvAsString("GEMINI_MODEL", ""),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidStorage, c.Storage)
	}

	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
