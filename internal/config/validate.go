package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal", "panic"}
)

// validateConfig validates the configuration and returns an error if invalid.
func validateConfig(c *Config) error {
	for _, validate := range []func() error{
		func() error { return validateServerConfig(c.Server) },
		func() error { return validateStorageConfig(c.Storage) },
		func() error { return validatePaginationConfig(c.Pagination) },
		func() error { return validateMaintenanceConfig(c.Maintenance) },
		func() error { return validateStartupConfig(c.Startup) },
		func() error { return validateLogConfig(c.Log) },
	} {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServerConfig validates server configuration.
func validateServerConfig(s ServerConfig) error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}

	host, portStr, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return fmt.Errorf("server.addr invalid format: %w", err)
	}

	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("server.addr invalid port: %w", err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("server.addr port out of range (1-65535)")
		}
	}

	if host != "" && host != "0.0.0.0" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			if _, err := net.LookupHost(host); err != nil {
				return fmt.Errorf("server.addr invalid host: %s", host)
			}
		}
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be greater than 0")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be greater than 0")
	}
	if s.IdleTimeout <= 0 {
		return fmt.Errorf("server.idle_timeout must be greater than 0")
	}

	if s.ReadTimeout > 5*time.Minute {
		return fmt.Errorf("server.read_timeout too large (max 5m)")
	}
	if s.WriteTimeout > 5*time.Minute {
		return fmt.Errorf("server.write_timeout too large (max 5m)")
	}
	if s.IdleTimeout > 30*time.Minute {
		return fmt.Errorf("server.idle_timeout too large (max 30m)")
	}

	if s.ReadTimeout < time.Second {
		return fmt.Errorf("server.read_timeout too small (min 1s)")
	}
	if s.WriteTimeout < time.Second {
		return fmt.Errorf("server.write_timeout too small (min 1s)")
	}

	if s.EnableCORS {
		if len(s.AllowedOrigins) == 0 {
			return fmt.Errorf("server.allowed_origins is required when enable_cors is set")
		}
		for _, origin := range s.AllowedOrigins {
			if origin == "*" {
				continue
			}
			u, err := url.Parse(origin)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("server.allowed_origins invalid origin: %s", origin)
			}
		}
	}

	return nil
}

// validateStorageConfig validates storage configuration.
func validateStorageConfig(s StorageConfig) error {
	if s.Path == "" {
		return fmt.Errorf("storage.path cannot be empty")
	}

	if strings.Contains(s.Path, "..") {
		return fmt.Errorf("storage.path cannot contain '..' for security")
	}

	if s.MaxOpenConns <= 0 {
		return fmt.Errorf("storage.max_open_conns must be greater than 0")
	}
	if s.MaxIdleConns < 0 {
		return fmt.Errorf("storage.max_idle_conns cannot be negative")
	}
	if s.MaxIdleConns > s.MaxOpenConns {
		return fmt.Errorf("storage.max_idle_conns cannot be greater than max_open_conns")
	}
	if s.ConnMaxLifetime <= 0 {
		return fmt.Errorf("storage.conn_max_lifetime must be greater than 0")
	}

	if s.MaxOpenConns > 1000 {
		return fmt.Errorf("storage.max_open_conns too large (max 1000)")
	}
	if s.ConnMaxLifetime > 24*time.Hour {
		return fmt.Errorf("storage.conn_max_lifetime too large (max 24h)")
	}
	if s.ConnMaxLifetime < time.Minute {
		return fmt.Errorf("storage.conn_max_lifetime too small (min 1m)")
	}

	return nil
}

// validatePaginationConfig validates page size limits.
func validatePaginationConfig(p PaginationConfig) error {
	if p.DefaultPageSize < 1 {
		return fmt.Errorf("pagination.default_page_size must be greater than 0")
	}
	if p.MaxPageSize < 1 {
		return fmt.Errorf("pagination.max_page_size must be greater than 0")
	}
	if p.MaxPageSize > 1000 {
		return fmt.Errorf("pagination.max_page_size too large (max 1000)")
	}
	if p.DefaultPageSize > p.MaxPageSize {
		return fmt.Errorf("pagination.default_page_size cannot be greater than max_page_size")
	}
	return nil
}

// validateMaintenanceConfig validates background job configuration.
func validateMaintenanceConfig(m MaintenanceConfig) error {
	if m.WorkerCount <= 0 {
		return fmt.Errorf("maintenance.worker_count must be greater than 0")
	}
	if m.WorkerCount > 64 {
		return fmt.Errorf("maintenance.worker_count too large (max 64)")
	}

	if m.MaxRetries < 0 {
		return fmt.Errorf("maintenance.max_retries cannot be negative")
	}
	if m.MaxRetries > 10 {
		return fmt.Errorf("maintenance.max_retries too large (max 10)")
	}

	if m.TokenSweepInterval < time.Minute {
		return fmt.Errorf("maintenance.token_sweep_interval too small (min 1m)")
	}
	if m.TokenSweepInterval > 24*time.Hour {
		return fmt.Errorf("maintenance.token_sweep_interval too large (max 24h)")
	}

	if m.StoppingTimeout < time.Minute {
		return fmt.Errorf("maintenance.stopping_timeout too small (min 1m)")
	}

	return nil
}

// validateStartupConfig validates the startup phase time constants.
func validateStartupConfig(s StartupConfig) error {
	for name, d := range map[string]time.Duration{
		"preparing":    s.Preparing,
		"building":     s.Building,
		"pending":      s.Pending,
		"creating":     s.Creating,
		"initializing": s.Initializing,
	} {
		if d <= 0 {
			return fmt.Errorf("startup.%s must be greater than 0", name)
		}
		if d > time.Hour {
			return fmt.Errorf("startup.%s too large (max 1h)", name)
		}
	}
	return nil
}

// validateLogConfig validates log configuration.
func validateLogConfig(l LogConfig) error {
	if !slices.Contains(validLogLevels, strings.ToLower(l.Level)) {
		return fmt.Errorf("log.level must be one of: debug, info, warn, error, fatal, panic")
	}
	return nil
}
