package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("STORE_PATH", "/tmp/hireflow/credentials.json")
	t.Setenv("API_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
	if cfg.StoreDriver != StoreFile {
		t.Fatalf("expected file store, got %q", cfg.StoreDriver)
	}
	if cfg.APITimeout != 0 {
		t.Fatalf("expected no api timeout, got %s", cfg.APITimeout)
	}
	if cfg.BootstrapTimeout != 3*time.Second {
		t.Fatalf("unexpected bootstrap timeout %s", cfg.BootstrapTimeout)
	}
}

func TestLoadTrimsBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://jobs.example.com/api/")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://jobs.example.com/api" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
}

func TestLoadReportsEveryInvalidKey(t *testing.T) {
	t.Setenv("API_BASE_URL", "not a url")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOGIN_RATE_LIMIT_PER_MIN", "0")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, key := range []string{"API_BASE_URL", "REDIS_URL", "LOGIN_RATE_LIMIT_PER_MIN"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err.Error())
		}
	}
}

func TestLoadNormalizesDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/hireflow")
	t.Setenv("DB_DRIVER", "pq")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DBDriver)
	}
}
