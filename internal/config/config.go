package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendSupabase = "supabase"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	Port                 string
	JWTSecret            string
	AppEnv               string
	EnableDocs           bool
	StoreBackend         string
	DBUrl                string
	SupabaseURL          string
	SupabaseServiceKey   string
	CacheTTL             time.Duration
	OperatorEmail        string
	OperatorPasswordHash string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		JWTSecret:            jwtSecret,
		AppEnv:               normalizeEnv(getEnv("APP_ENV", "production")),
		EnableDocs:           getEnvBool("ENABLE_API_DOCS", false),
		StoreBackend:         strings.ToLower(getEnv("STORE_BACKEND", StoreBackendSupabase)),
		DBUrl:                getEnv("DB_URL", ""),
		SupabaseURL:          getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:   getEnv("SUPABASE_SERVICE_KEY", ""),
		CacheTTL:             time.Duration(getEnvInt("CACHE_TTL_SECONDS", 45)) * time.Second,
		OperatorEmail:        getEnv("OPERATOR_EMAIL", ""),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
	}

	switch cfg.StoreBackend {
	case StoreBackendSupabase:
		if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase store backend")
		}
	case StoreBackendPostgres:
		if cfg.DBUrl == "" {
			return nil, fmt.Errorf("DB_URL is required for the postgres store backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}
