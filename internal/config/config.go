package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthMode             string
	AuthIntrospectionURL string
	WebhookSecret        string

	LLMEndpoint string
	LLMAPIKey   string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	LogLevel string
}

const (
	AuthModeRemote   = "remote"
	AuthModeInsecure = "insecure"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "rescue"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		AuthMode:             normalizeAuthMode(getenv("AUTH_MODE", AuthModeRemote), environment),
		AuthIntrospectionURL: strings.TrimSpace(getenv("AUTH_INTROSPECTION_URL", "")),
		WebhookSecret:        strings.TrimSpace(getenv("CHECKOUT_WEBHOOK_SECRET", "")),

		LLMEndpoint: strings.TrimSpace(getenv("LLM_ENDPOINT", "")),
		LLMAPIKey:   strings.TrimSpace(getenv("LLM_API_KEY", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "rescue"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	return cfg
}

func (c Config) IsDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func normalizeAuthMode(raw, environment string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == AuthModeInsecure {
		// Header-trusting auth never leaves development setups.
		switch strings.ToLower(strings.TrimSpace(environment)) {
		case "production", "prod":
			return AuthModeRemote
		}
		return AuthModeInsecure
	}
	return AuthModeRemote
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
