package config

import "github.com/spf13/viper"

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.enable_cors", false)
	v.SetDefault("server.allowed_origins", []string{})

	// Storage defaults
	v.SetDefault("storage.path", "wsadmin.db")
	v.SetDefault("storage.max_open_conns", 16)
	v.SetDefault("storage.max_idle_conns", 4)
	v.SetDefault("storage.conn_max_lifetime", "1h")

	// Pagination defaults
	v.SetDefault("pagination.default_page_size", 25)
	v.SetDefault("pagination.max_page_size", 100)

	// Maintenance defaults
	v.SetDefault("maintenance.worker_count", 2)
	v.SetDefault("maintenance.max_retries", 3)
	v.SetDefault("maintenance.token_sweep_interval", "1h")
	v.SetDefault("maintenance.stopping_timeout", "10m")

	// Startup phase time constants
	v.SetDefault("startup.preparing", "5s")
	v.SetDefault("startup.building", "60s")
	v.SetDefault("startup.pending", "10s")
	v.SetDefault("startup.creating", "20s")
	v.SetDefault("startup.initializing", "30s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}
