package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port         string
	StoreBackend string
	LogLevel     string

	PostgresAddress         string
	PostgresPort            string
	PostgresDB              string
	PostgresUsername        string
	PostgresPassword        string
	PostgresMaxOpenConns    int
	PostgresMaxIdleConns    int
	PostgresConnMaxLifetime time.Duration
	PostgresAutoMigrate     bool

	CORSAllowedOrigins []string

	JWTSecret   string
	TokenTTL    time.Duration
	RequireAuth bool

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

// ProcessEnvironmentVariables builds the configuration from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win over it.
func ProcessEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		Port:         getEnv("PORT", "9446"),
		StoreBackend: getEnv("STORE_BACKEND", BackendPostgres),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		PostgresAddress:         getEnv("POSTGRES_ADDRESS", "localhost"),
		PostgresPort:            getEnv("POSTGRES_PORT", "5433"),
		PostgresDB:              getEnv("POSTGRES_DB", "postgres"),
		PostgresUsername:        getEnv("POSTGRES_USERNAME", "postgres"),
		PostgresPassword:        getEnv("POSTGRES_PASSWORD", "testpassword"),
		PostgresMaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 20),
		PostgresMaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
		PostgresConnMaxLifetime: getEnvDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		PostgresAutoMigrate:     getEnvBool("POSTGRES_AUTO_MIGRATE", false),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		JWTSecret:   getEnv("JWT_SECRET", "insecure-development-secret"),
		TokenTTL:    getEnvDuration("TOKEN_TTL", 30*time.Minute),
		RequireAuth: getEnvBool("REQUIRE_AUTH", false),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "expenses"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "expense.deleted"),
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}

	return &env, nil
}

// PostgresDSN returns the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUsername, c.PostgresPassword),
		Host:     c.PostgresAddress + ":" + c.PostgresPort,
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case BackendPostgres:
		if c.PostgresAddress == "" || c.PostgresDB == "" {
			problems = append(problems, "postgres address and database are required for the postgres backend")
		}
		if c.PostgresMaxOpenConns < 0 || c.PostgresMaxIdleConns < 0 {
			problems = append(problems, "postgres connection limits cannot be negative")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend '%s': must be one of [%s %s]", c.StoreBackend, BackendPostgres, BackendMemory))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT secret cannot be empty")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
