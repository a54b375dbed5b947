package config

import (
	"fmt"
	"time"
)

// Config is the catalogue's configuration, loaded from a YAML file.
type Config struct {
	// Database configures the SQLite catalogue store.
	Database DatabaseConfig `yaml:"database"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Catalog configures catalogue-wide behaviour.
	Catalog CatalogConfig `yaml:"catalog"`

	// Maintenance configures scheduled database maintenance.
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Driver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3"
	// (cgo).
	Driver string `yaml:"driver"`

	// WALMode enables Write-Ahead Logging.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait for a locked database.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// CatalogConfig configures catalogue-wide behaviour.
type CatalogConfig struct {
	// BaseURI is the prefix under which the assembler mints rule URIs.
	BaseURI string `yaml:"base_uri"`

	// MaxResults bounds match engine result lists when the caller does not.
	MaxResults int `yaml:"max_results"`
}

// MaintenanceConfig configures scheduled database maintenance. Empty
// schedules disable the corresponding job.
type MaintenanceConfig struct {
	// CheckpointSchedule is a cron expression for WAL checkpoints,
	// e.g. "*/30 * * * *".
	CheckpointSchedule string `yaml:"checkpoint_schedule"`

	// VacuumSchedule is a cron expression for VACUUM runs,
	// e.g. "0 3 * * *".
	VacuumSchedule string `yaml:"vacuum_schedule"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "data/catalog.db",
			Driver:      "sqlite",
			WALMode:     true,
			BusyTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Catalog: CatalogConfig{
			BaseURI:    "https://licences.example.org/",
			MaxResults: 10,
		},
		Maintenance: MaintenanceConfig{
			CheckpointSchedule: "*/30 * * * *",
			VacuumSchedule:     "0 3 * * *",
		},
	}
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	switch c.Database.Driver {
	case "", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("database.driver must be \"sqlite\" or \"sqlite3\", got %q", c.Database.Driver)
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be \"json\" or \"text\", got %q", c.Logging.Format)
	}
	if c.Catalog.BaseURI == "" {
		return fmt.Errorf("catalog.base_uri cannot be empty")
	}
	if c.Catalog.MaxResults < 0 {
		return fmt.Errorf("catalog.max_results cannot be negative")
	}
	return nil
}
