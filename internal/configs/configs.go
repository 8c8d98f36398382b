package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppURL                     string
	DatabaseDriver             string
	DatabaseDSN                string
	RateLimit                  int
	CacheEnabled               bool
	RedisAddr                  string
	OverdueCacheKey            string
	OverdueCacheTTLSeconds     int
	OverdueWarmIntervalSeconds int
	CORSAllowedOrigins         []string
	LogLevel                   string
	LogEncoding                string
	ShutdownTimeoutSeconds     int
}

func Load() (Config, error) {
	appHost := getEnv("APP_HOST", "127.0.0.1")
	appPort := getEnv("APP_PORT", "8080")
	redisHost := getEnv("REDIS_HOST", "127.0.0.1")
	redisPort := getEnv("REDIS_PORT", "6379")

	var err error
	cfg := Config{
		AppURL:             fmt.Sprintf("%s:%s", appHost, appPort),
		DatabaseDriver:     getEnv("DATABASE_DRIVER", DriverSQLite),
		DatabaseDSN:        getEnv("DATABASE_DSN", "tasks.db"),
		RedisAddr:          fmt.Sprintf("%s:%s", redisHost, redisPort),
		OverdueCacheKey:    getEnv("OVERDUE_CACHE_KEY", "tasks:overdue_counts"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogEncoding:        getEnv("LOG_ENCODING", "json"),
	}

	if cfg.RateLimit, err = getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120); err != nil {
		return Config{}, err
	}
	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.OverdueCacheTTLSeconds, err = getEnvAsInt("OVERDUE_CACHE_TTL_SECONDS", 15); err != nil {
		return Config{}, err
	}
	if cfg.OverdueWarmIntervalSeconds, err = getEnvAsInt("OVERDUE_WARM_INTERVAL_SECONDS", 15); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeoutSeconds, err = getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 20); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.AppURL == "" {
		return errors.New("APP_URL must not be empty (e.g. 127.0.0.1:8080)")
	}
	if cfg.DatabaseDriver != DriverSQLite && cfg.DatabaseDriver != DriverPostgres {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q", DriverSQLite, DriverPostgres)
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.CacheEnabled {
		if cfg.OverdueCacheKey == "" {
			return errors.New("OVERDUE_CACHE_KEY must not be empty when CACHE_ENABLED is set")
		}
		if cfg.OverdueCacheTTLSeconds <= 0 {
			return errors.New("OVERDUE_CACHE_TTL_SECONDS must be greater than 0")
		}
		if cfg.OverdueWarmIntervalSeconds <= 0 {
			return errors.New("OVERDUE_WARM_INTERVAL_SECONDS must be greater than 0")
		}
		if cfg.OverdueCacheTTLSeconds > cfg.OverdueWarmIntervalSeconds {
			return errors.New("OVERDUE_CACHE_TTL_SECONDS must not exceed OVERDUE_WARM_INTERVAL_SECONDS")
		}
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean value for %s", key)
		}
		return b, nil
	}
	return defaultVal, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
