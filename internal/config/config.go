package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete configuration schema for wsadmin.
//
// Configuration sources (in order of precedence):
//  1. Defaults
//  2. Configuration file (optional)
//  3. Environment variables
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Pagination  PaginationConfig  `mapstructure:"pagination" yaml:"pagination"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" yaml:"maintenance"`
	Startup     StartupConfig     `mapstructure:"startup" yaml:"startup"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	EnableCORS     bool          `mapstructure:"enable_cors" yaml:"enable_cors"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type StorageConfig struct {
	Path            string        `mapstructure:"path" yaml:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// PaginationConfig controls page sizes of list endpoints.
type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" yaml:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size" yaml:"max_page_size"`
}

// MaintenanceConfig controls the background jobs.
type MaintenanceConfig struct {
	WorkerCount        int           `mapstructure:"worker_count" yaml:"worker_count"`
	MaxRetries         int           `mapstructure:"max_retries" yaml:"max_retries"`
	TokenSweepInterval time.Duration `mapstructure:"token_sweep_interval" yaml:"token_sweep_interval"`
	StoppingTimeout    time.Duration `mapstructure:"stopping_timeout" yaml:"stopping_timeout"`
}

// StartupConfig holds the expected duration of each startup phase.
type StartupConfig struct {
	Preparing    time.Duration `mapstructure:"preparing" yaml:"preparing"`
	Building     time.Duration `mapstructure:"building" yaml:"building"`
	Pending      time.Duration `mapstructure:"pending" yaml:"pending"`
	Creating     time.Duration `mapstructure:"creating" yaml:"creating"`
	Initializing time.Duration `mapstructure:"initializing" yaml:"initializing"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error, fatal, panic
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"` // human-readable console output
}

// Load loads configuration from defaults, the first config.yaml found in the
// search path, and environment variables, then validates the result.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit configuration file. An empty path falls
// back to the search path, where a missing file is not an error.
//
// The function fails fast on:
//   - Invalid configuration file
//   - Invalid or missing required configuration values
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Register default values
	setDefaults(v)

	// Environment variable support
	v.SetEnvPrefix("WSADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(false)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config file error: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		// Cross-platform config directory
		if configDir := getConfigDir(); configDir != "" {
			v.AddConfigPath(configDir)
		}

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file error: %w", err)
			}
		}
	}

	// AutomaticEnv does not see list keys absent from defaults
	if origins, exists := os.LookupEnv("WSADMIN_SERVER_ALLOWED_ORIGINS"); exists {
		v.Set("server.allowed_origins", strings.Split(origins, ","))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalizeConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// getConfigDir returns the appropriate config directory for the current OS
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "wsadmin")
		}
		return ""
	}

	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".wsadmin")
	}
	return ""
}
