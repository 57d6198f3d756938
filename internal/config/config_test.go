package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// isolate keeps the developer's ~/.wsadmin out of the search path.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())
}

// TestConfigDefaults tests that default values are properly set
func TestConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	t.Run("Server defaults", func(t *testing.T) {
		if cfg.Server.Addr != ":8080" {
			t.Errorf("Expected server addr ':8080', got '%s'", cfg.Server.Addr)
		}
		if cfg.Server.ReadTimeout != 30*time.Second {
			t.Errorf("Expected read timeout 30s, got %v", cfg.Server.ReadTimeout)
		}
		if cfg.Server.WriteTimeout != 30*time.Second {
			t.Errorf("Expected write timeout 30s, got %v", cfg.Server.WriteTimeout)
		}
		if cfg.Server.IdleTimeout != 60*time.Second {
			t.Errorf("Expected idle timeout 60s, got %v", cfg.Server.IdleTimeout)
		}
		if cfg.Server.EnableCORS {
			t.Error("Expected CORS to be disabled by default")
		}
	})

	t.Run("Storage defaults", func(t *testing.T) {
		if cfg.Storage.Path != "wsadmin.db" {
			t.Errorf("Expected storage path 'wsadmin.db', got '%s'", cfg.Storage.Path)
		}
		if cfg.Storage.MaxOpenConns != 16 {
			t.Errorf("Expected max open conns 16, got %d", cfg.Storage.MaxOpenConns)
		}
		if cfg.Storage.MaxIdleConns != 4 {
			t.Errorf("Expected max idle conns 4, got %d", cfg.Storage.MaxIdleConns)
		}
		if cfg.Storage.ConnMaxLifetime != time.Hour {
			t.Errorf("Expected conn max lifetime 1h, got %v", cfg.Storage.ConnMaxLifetime)
		}
	})

	t.Run("Pagination defaults", func(t *testing.T) {
		if cfg.Pagination.DefaultPageSize != 25 {
			t.Errorf("Expected default page size 25, got %d", cfg.Pagination.DefaultPageSize)
		}
		if cfg.Pagination.MaxPageSize != 100 {
			t.Errorf("Expected max page size 100, got %d", cfg.Pagination.MaxPageSize)
		}
	})

	t.Run("Maintenance defaults", func(t *testing.T) {
		if cfg.Maintenance.WorkerCount != 2 {
			t.Errorf("Expected worker count 2, got %d", cfg.Maintenance.WorkerCount)
		}
		if cfg.Maintenance.TokenSweepInterval != time.Hour {
			t.Errorf("Expected token sweep interval 1h, got %v", cfg.Maintenance.TokenSweepInterval)
		}
		if cfg.Maintenance.StoppingTimeout != 10*time.Minute {
			t.Errorf("Expected stopping timeout 10m, got %v", cfg.Maintenance.StoppingTimeout)
		}
	})

	t.Run("Startup defaults", func(t *testing.T) {
		if cfg.Startup.Building != 60*time.Second {
			t.Errorf("Expected building 60s, got %v", cfg.Startup.Building)
		}
		if len(cfg.Startup.Stages()) != 5 {
			t.Errorf("Expected 5 startup stages, got %d", len(cfg.Startup.Stages()))
		}
	})

	t.Run("Log defaults", func(t *testing.T) {
		if cfg.Log.Level != "info" {
			t.Errorf("Expected log level 'info', got '%s'", cfg.Log.Level)
		}
		if cfg.Log.Pretty {
			t.Error("Expected pretty logging to be disabled by default")
		}
	})
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("WSADMIN_SERVER_ADDR", ":9090")
	t.Setenv("WSADMIN_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("WSADMIN_LOG_LEVEL", "DEBUG")
	t.Setenv("WSADMIN_SERVER_ENABLE_CORS", "true")
	t.Setenv("WSADMIN_SERVER_ALLOWED_ORIGINS", "https://admin.example.com/, http://localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected addr ':9090', got '%s'", cfg.Server.Addr)
	}
	if cfg.Pagination.DefaultPageSize != 10 {
		t.Errorf("Expected default page size 10, got %d", cfg.Pagination.DefaultPageSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected normalized log level 'debug', got '%s'", cfg.Log.Level)
	}
	want := []string{"https://admin.example.com", "http://localhost:3000"}
	if strings.Join(cfg.Server.AllowedOrigins, ",") != strings.Join(want, ",") {
		t.Errorf("Expected origins %v, got %v", want, cfg.Server.AllowedOrigins)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)

	t.Run("Explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wsadmin.yaml")
		content := `
server:
  addr: "127.0.0.1:7070"
pagination:
  default_page_size: 50
  max_page_size: 200
startup:
  building: 2m
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("Failed to load config file: %v", err)
		}
		if cfg.Server.Addr != "127.0.0.1:7070" {
			t.Errorf("Expected addr from file, got '%s'", cfg.Server.Addr)
		}
		if cfg.Pagination.MaxPageSize != 200 {
			t.Errorf("Expected max page size 200, got %d", cfg.Pagination.MaxPageSize)
		}
		if cfg.Startup.Building != 2*time.Minute {
			t.Errorf("Expected building 2m, got %v", cfg.Startup.Building)
		}
	})

	t.Run("Env beats file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wsadmin.yaml")
		if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("WSADMIN_LOG_LEVEL", "error")

		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("Failed to load config file: %v", err)
		}
		if cfg.Log.Level != "error" {
			t.Errorf("Expected env log level 'error', got '%s'", cfg.Log.Level)
		}
	})

	t.Run("Missing explicit file fails", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("Expected error for missing config file")
		}
	})

	t.Run("Invalid values fail", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wsadmin.yaml")
		if err := os.WriteFile(path, []byte("pagination:\n  default_page_size: 500\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Error("Expected validation error for default_page_size above max_page_size")
		}
	})
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Storage: StorageConfig{
			Path:            "wsadmin.db",
			MaxOpenConns:    16,
			MaxIdleConns:    4,
			ConnMaxLifetime: time.Hour,
		},
		Pagination: PaginationConfig{DefaultPageSize: 25, MaxPageSize: 100},
		Maintenance: MaintenanceConfig{
			WorkerCount:        2,
			MaxRetries:         3,
			TokenSweepInterval: time.Hour,
			StoppingTimeout:    10 * time.Minute,
		},
		Startup: StartupConfig{
			Preparing:    5 * time.Second,
			Building:     time.Minute,
			Pending:      10 * time.Second,
			Creating:     20 * time.Second,
			Initializing: 30 * time.Second,
		},
		Log: LogConfig{Level: "info"},
	}
}

func TestValidateConfig(t *testing.T) {
	base := validConfig()
	if err := validateConfig(&base); err != nil {
		t.Fatalf("Expected valid base config, got: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr cannot be empty"},
		{"addr without port separator", func(c *Config) { c.Server.Addr = "8080" }, "server.addr invalid format"},
		{"port out of range", func(c *Config) { c.Server.Addr = ":70000" }, "port out of range"},
		{"read timeout too small", func(c *Config) { c.Server.ReadTimeout = 500 * time.Millisecond }, "server.read_timeout too small"},
		{"cors without origins", func(c *Config) { c.Server.EnableCORS = true }, "server.allowed_origins is required"},
		{"cors bad origin", func(c *Config) {
			c.Server.EnableCORS = true
			c.Server.AllowedOrigins = []string{"ftp://example.com"}
		}, "invalid origin"},
		{"storage path traversal", func(c *Config) { c.Storage.Path = "../wsadmin.db" }, "cannot contain '..'"},
		{"idle above open", func(c *Config) { c.Storage.MaxIdleConns = 32 }, "cannot be greater than max_open_conns"},
		{"zero page size", func(c *Config) { c.Pagination.DefaultPageSize = 0 }, "pagination.default_page_size must be greater than 0"},
		{"default above max", func(c *Config) { c.Pagination.DefaultPageSize = 101 }, "cannot be greater than max_page_size"},
		{"no workers", func(c *Config) { c.Maintenance.WorkerCount = 0 }, "maintenance.worker_count must be greater than 0"},
		{"sweep too frequent", func(c *Config) { c.Maintenance.TokenSweepInterval = time.Second }, "token_sweep_interval too small"},
		{"zero startup phase", func(c *Config) { c.Startup.Creating = 0 }, "startup.creating must be greater than 0"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestInitLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	t.Run("JSON output at configured level", func(t *testing.T) {
		var buf bytes.Buffer
		initLogger(LogConfig{Level: "warn"}, &buf)

		log.Info().Msg("hidden")
		log.Warn().Str("component", "test").Msg("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("Expected info message to be filtered, got %s", out)
		}
		if !strings.Contains(out, `"component":"test"`) {
			t.Errorf("Expected JSON field in output, got %s", out)
		}
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		initLogger(LogConfig{Level: "chatty"}, &buf)
		if zerolog.GlobalLevel() != zerolog.InfoLevel {
			t.Errorf("Expected info level, got %s", zerolog.GlobalLevel())
		}
	})

	t.Run("Pretty output", func(t *testing.T) {
		var buf bytes.Buffer
		initLogger(LogConfig{Level: "info", Pretty: true}, &buf)
		log.Info().Msg("console")
		if strings.Contains(buf.String(), `"message"`) {
			t.Errorf("Expected console format, got %s", buf.String())
		}
	})
}
