package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                 string
	Environment          string
	AllowedOrigins       []string
	FrontendURL          string
	Backend              BackendConfig
	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	RedisURL             string
	RedisPassword        string
	StateSecret          string
	RefreshLookahead     time.Duration
	ProfileCacheTTL      time.Duration
	LoginHistoryDays     int
	LogLevel             string
	LogFormat            string
}

// IsProduction reports whether cookies must be issued as Secure/SameSite=None.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig builds the runtime configuration. Values from the optional
// CONFIG_FILE (YAML) are applied first and environment variables win.
func LoadConfig() (*Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(path); err != nil {
			return nil, err
		}
	}

	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:8080")
	allowedOriginsStr := GetEnv("ALLOWED_ORIGINS", "")

	allowedOrigins := []string{
		frontendURL,
		"http://localhost:5173",
	}
	if allowedOriginsStr != "" {
		for _, origin := range strings.Split(allowedOriginsStr, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
	}

	backend, err := LoadBackendConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                 GetEnv("PORT", "8080"),
		Environment:          GetEnv("ENVIRONMENT", "development"),
		AllowedOrigins:       allowedOrigins,
		FrontendURL:          frontendURL,
		Backend:              *backend,
		DatabaseURL:          GetEnv("DATABASE_URL", ""),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		RedisURL:             GetEnv("REDIS_URL", ""),
		RedisPassword:        GetEnv("REDIS_PASSWORD", ""),
		StateSecret:          GetEnv("STATE_SECRET", "change-me-in-production"),
		RefreshLookahead:     GetEnvAsDuration("REFRESH_LOOKAHEAD", 24*time.Hour),
		ProfileCacheTTL:      GetEnvAsDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		LoginHistoryDays:     GetEnvAsInt("LOGIN_HISTORY_DAYS", 30),
		LogLevel:             GetEnv("LOG_LEVEL", "info"),
		LogFormat:            GetEnv("LOG_FORMAT", "text"),
	}, nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration accepts Go duration strings ("90s", "24h").
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}
