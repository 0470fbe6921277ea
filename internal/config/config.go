// Package config defines service configuration structures and loading hooks.
package config

import (
	"time"
)

// Store drivers understood by the binary.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver picks the backend: memory, postgres or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the pgx connection string, required for postgres.
	DatabaseURL string `koanf:"database_url"`

	// SQLitePath is the database file for the sqlite driver; ":memory:" is allowed.
	SQLitePath string `koanf:"sqlite_path"`

	// SeedFile optionally preloads the memory driver from YAML.
	SeedFile string `koanf:"seed_file"`

	// QueryTimeout bounds each store call. Zero disables the bound.
	QueryTimeout time.Duration `koanf:"query_timeout"`

	// StaleAfter is the age past which an opportunity signal is decayed.
	StaleAfter time.Duration `koanf:"stale_after"`

	// StaleDecayFactor multiplies stale opportunity scores; must be in (0,1].
	StaleDecayFactor float64 `koanf:"stale_decay_factor"`

	// WeightWriteRPS and WeightWriteBurst throttle PUT priority-weight.
	WeightWriteRPS   float64 `koanf:"weight_write_rps"`
	WeightWriteBurst int     `koanf:"weight_write_burst"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		StoreDriver:      DriverMemory,
		SQLitePath:       "ideas.db",
		QueryTimeout:     5 * time.Second,
		StaleAfter:       24 * time.Hour,
		StaleDecayFactor: 0.8,
		WeightWriteRPS:   5,
		WeightWriteBurst: 10,
	}
}
