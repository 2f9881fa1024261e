package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config хранит конфигурацию клиента и локальной консоли.
type Config struct {
	APIBaseURL       string
	APITimeout       time.Duration
	LogLevel         string
	StoreDriver      string
	StorePath        string
	StoreKeyPrefix   string
	RedisURL         string
	DatabaseURL      string
	DBDriver         string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnMaxIdle    time.Duration
	DBConnMaxLife    time.Duration
	ConsolePort      string
	RequestTimeout   time.Duration
	LoginPerMin      int
	BootstrapTimeout time.Duration
}

// Load читает .env (если есть) и переменные окружения.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:       strings.TrimRight(envOr("API_BASE_URL", "http://localhost:5000/api"), "/"),
		APITimeout:       durationOr("API_TIMEOUT", 0),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		StoreDriver:      strings.ToLower(envOr("STORE_DRIVER", StoreFile)),
		StorePath:        envOr("STORE_PATH", defaultStorePath()),
		StoreKeyPrefix:   envOr("STORE_KEY_PREFIX", "hireflow"),
		RedisURL:         envOr("REDIS_URL", ""),
		DatabaseURL:      envOr("DATABASE_URL", ""),
		DBDriver:         strings.ToLower(envOr("DB_DRIVER", "postgres")),
		DBMaxOpenConns:   intOr("DB_MAX_OPEN_CONNS", 4),
		DBMaxIdleConns:   intOr("DB_MAX_IDLE_CONNS", 2),
		DBConnMaxIdle:    durationOr("DB_CONN_MAX_IDLE", 5*time.Minute),
		DBConnMaxLife:    durationOr("DB_CONN_MAX_LIFE", 30*time.Minute),
		ConsolePort:      envOr("CONSOLE_PORT", "8090"),
		RequestTimeout:   durationOr("REQUEST_TIMEOUT", 15*time.Second),
		LoginPerMin:      intOr("LOGIN_RATE_LIMIT_PER_MIN", 10),
		BootstrapTimeout: durationOr("BOOTSTRAP_TIMEOUT", 3*time.Second),
	}
	if cfg.DBDriver == "pq" || cfg.DBDriver == "postgresql" {
		cfg.DBDriver = "postgres"
	}

	invalid := make([]string, 0, 4)
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		invalid = append(invalid, "API_BASE_URL")
	}
	switch cfg.StoreDriver {
	case StoreFile:
		if cfg.StorePath == "" {
			invalid = append(invalid, "STORE_PATH")
		}
	case StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			invalid = append(invalid, "REDIS_URL")
		}
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			invalid = append(invalid, "DATABASE_URL")
		}
	default:
		invalid = append(invalid, "STORE_DRIVER")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "pgx" {
		invalid = append(invalid, "DB_DRIVER")
	}
	if cfg.LoginPerMin <= 0 {
		invalid = append(invalid, "LOGIN_RATE_LIMIT_PER_MIN")
	}
	if cfg.BootstrapTimeout <= 0 {
		invalid = append(invalid, "BOOTSTRAP_TIMEOUT")
	}
	if cfg.APITimeout < 0 {
		invalid = append(invalid, "API_TIMEOUT")
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid env vars: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "hireflow", "credentials.json")
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationOr(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}

func intOr(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
