package config

import (
	"github.com/spf13/viper"
)

// DefaultDirPermissions is used when creating the user config directory.
const DefaultDirPermissions = 0o755

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "opsq.db")

	// Catalog defaults; an empty path means the embedded catalog
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.watch", false)

	// Logging defaults
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)

	// Turn handling defaults
	v.SetDefault("ask.default_limit", 100)
}
