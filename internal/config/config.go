package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	devJWTSecret = "devlink-development-secret"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	AppEnv          string
	LogLevel        string
	ShutdownTimeout time.Duration

	DatabaseDriver string
	DatabaseURL    string // SQLite file path, Postgres DSN or Mongo URI
	MongoDatabase  string

	JWTSecret string

	AllowedOrigins       []string
	SearchIncludesDomain bool
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	searchDomain, err := strconv.ParseBool(getEnv("SEARCH_INCLUDES_DOMAIN", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_INCLUDES_DOMAIN: %w", err)
	}

	cfg := &Config{
		ServerPort:           port,
		AppEnv:               getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout:      shutdownTimeout,
		DatabaseDriver:       strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:          getEnv("DATABASE_URL", "./devlink.db"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "devlink"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AllowedOrigins:       getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		SearchIncludesDomain: searchDomain,
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getSliceEnv(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
