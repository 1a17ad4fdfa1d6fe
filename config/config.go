// Package config loads runtime configuration from opsq.toml files and
// OPSQ_* environment variables, with file discovery walking up from the
// working directory.
package config

// Config is the resolved runtime configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
	Ask      AskConfig      `mapstructure:"ask"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig configures the schema catalog source.
type CatalogConfig struct {
	Path  string `mapstructure:"path"`  // empty = embedded default catalog
	Watch bool   `mapstructure:"watch"` // hot-reload the catalog file on change
}

// LogConfig configures diagnostic output.
type LogConfig struct {
	JSON      bool `mapstructure:"json"`
	Verbosity int  `mapstructure:"verbosity"`
}

// AskConfig configures turn handling defaults.
type AskConfig struct {
	DefaultLimit int `mapstructure:"default_limit"` // applied when a template declares none
}
