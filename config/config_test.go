package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("LABELSCAN_SERVER_HOST")
		os.Unsetenv("LABELSCAN_SERVER_PORT")
		os.Unsetenv("LABELSCAN_SERVER_ENVIRONMENT")
		os.Unsetenv("LABELSCAN_SERVER_ALLOWED_ORIGINS")
		os.Unsetenv("LABELSCAN_UPSTREAM_BASE_URL")
		os.Unsetenv("LABELSCAN_UPSTREAM_TIMEOUT")
		os.Unsetenv("LABELSCAN_UPSTREAM_USER_AGENT")
		os.Unsetenv("LABELSCAN_UPSTREAM_RATE_LIMIT")
		os.Unsetenv("LABELSCAN_CACHE_TYPE")
		os.Unsetenv("LABELSCAN_CACHE_REDIS_URL")
		os.Unsetenv("LABELSCAN_CACHE_SQLITE_PATH")
		os.Unsetenv("LABELSCAN_CACHE_TTL")
		os.Unsetenv("LABELSCAN_EVENTS_ENABLED")
		os.Unsetenv("LABELSCAN_EVENTS_AMQP_URL")
		os.Unsetenv("LABELSCAN_EVENTS_QUEUE")
		os.Unsetenv("LABELSCAN_TELEMETRY_OTLP_ENDPOINT")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Host != "0.0.0.0" {
			t.Errorf("Server.Host = %s, want 0.0.0.0", cfg.Server.Host)
		}
		if cfg.Server.Port != "5000" {
			t.Errorf("Server.Port = %s, want 5000", cfg.Server.Port)
		}
		if cfg.Server.Addr() != "0.0.0.0:5000" {
			t.Errorf("Server.Addr() = %s, want 0.0.0.0:5000", cfg.Server.Addr())
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if !reflect.DeepEqual(cfg.Server.AllowedOrigins, []string{"*"}) {
			t.Errorf("Server.AllowedOrigins = %v, want [*]", cfg.Server.AllowedOrigins)
		}
		if cfg.Upstream.BaseURL != "https://world.openfoodfacts.org" {
			t.Errorf("Upstream.BaseURL = %s, want https://world.openfoodfacts.org", cfg.Upstream.BaseURL)
		}
		if cfg.Upstream.Timeout != 10*time.Second {
			t.Errorf("Upstream.Timeout = %v, want 10s", cfg.Upstream.Timeout)
		}
		if cfg.Upstream.RateLimit != 100 {
			t.Errorf("Upstream.RateLimit = %d, want 100", cfg.Upstream.RateLimit)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 0 {
			t.Errorf("Cache.TTL = %v, want 0 (never expire)", cfg.Cache.TTL)
		}
		if cfg.Events.Enabled {
			t.Errorf("Events.Enabled = true, want false")
		}
		if cfg.Events.Queue != "product.classified" {
			t.Errorf("Events.Queue = %s, want product.classified", cfg.Events.Queue)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			t.Errorf("Telemetry.OTLPEndpoint = %s, want empty", cfg.Telemetry.OTLPEndpoint)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("LABELSCAN_SERVER_PORT", "9090")
		os.Setenv("LABELSCAN_SERVER_ENVIRONMENT", "production")
		os.Setenv("LABELSCAN_SERVER_ALLOWED_ORIGINS", "https://app.example.com,http://localhost:3000")
		os.Setenv("LABELSCAN_UPSTREAM_BASE_URL", "https://staging.openfoodfacts.net")
		os.Setenv("LABELSCAN_UPSTREAM_TIMEOUT", "3s")
		os.Setenv("LABELSCAN_UPSTREAM_RATE_LIMIT", "10")
		os.Setenv("LABELSCAN_CACHE_TYPE", "redis")
		os.Setenv("LABELSCAN_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("LABELSCAN_CACHE_TTL", "24h")
		os.Setenv("LABELSCAN_EVENTS_ENABLED", "true")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		wantOrigins := []string{"https://app.example.com", "http://localhost:3000"}
		if !reflect.DeepEqual(cfg.Server.AllowedOrigins, wantOrigins) {
			t.Errorf("Server.AllowedOrigins = %v, want %v", cfg.Server.AllowedOrigins, wantOrigins)
		}
		if cfg.Upstream.BaseURL != "https://staging.openfoodfacts.net" {
			t.Errorf("Upstream.BaseURL = %s, want https://staging.openfoodfacts.net", cfg.Upstream.BaseURL)
		}
		if cfg.Upstream.Timeout != 3*time.Second {
			t.Errorf("Upstream.Timeout = %v, want 3s", cfg.Upstream.Timeout)
		}
		if cfg.Upstream.RateLimit != 10 {
			t.Errorf("Upstream.RateLimit = %d, want 10", cfg.Upstream.RateLimit)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if !cfg.Events.Enabled {
			t.Errorf("Events.Enabled = false, want true")
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("LABELSCAN_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis URL missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("LABELSCAN_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis URL")
		}
		if err != nil && !strings.HasPrefix(err.Error(), "invalid configuration:") {
			t.Errorf("Load() error = %v, want 'invalid configuration' prefix", err)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_COMMENTED")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})

	t.Run("Load picks up LABELSCAN settings from .env", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())
		os.Unsetenv("LABELSCAN_SERVER_PORT")
		defer os.Unsetenv("LABELSCAN_SERVER_PORT")

		if err := os.WriteFile(".env", []byte("LABELSCAN_SERVER_PORT=7070"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
	})
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "5000",
		},
		Upstream: UpstreamConfig{
			BaseURL:   "https://world.openfoodfacts.org",
			Timeout:   10 * time.Second,
			RateLimit: 100,
		},
		Cache: CacheConfig{
			Type: "memory",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "validates successfully with defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "fails without port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: true,
		},
		{
			name:    "fails without upstream base URL",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "fails with zero timeout",
			mutate:  func(c *Config) { c.Upstream.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "fails with zero rate limit",
			mutate:  func(c *Config) { c.Upstream.RateLimit = 0 },
			wantErr: true,
		},
		{
			name:    "fails for invalid cache type",
			mutate:  func(c *Config) { c.Cache.Type = "invalid-type" },
			wantErr: true,
		},
		{
			name: "validates redis cache type with URL",
			mutate: func(c *Config) {
				c.Cache.Type = "redis"
				c.Cache.RedisURL = "redis://localhost:6379"
			},
			wantErr: false,
		},
		{
			name:    "fails for redis cache without URL",
			mutate:  func(c *Config) { c.Cache.Type = "redis" },
			wantErr: true,
		},
		{
			name: "validates sqlite cache with path",
			mutate: func(c *Config) {
				c.Cache.Type = "sqlite"
				c.Cache.SQLitePath = "/var/lib/labelscan/products.db"
			},
			wantErr: false,
		},
		{
			name:    "fails for sqlite cache without path",
			mutate:  func(c *Config) { c.Cache.Type = "sqlite" },
			wantErr: true,
		},
		{
			name:    "fails for negative TTL",
			mutate:  func(c *Config) { c.Cache.TTL = -time.Second },
			wantErr: true,
		},
		{
			name:    "fails for events without AMQP URL",
			mutate:  func(c *Config) { c.Events.Enabled = true },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
