package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values shared with packages that are constructed without a Config
const (
	DefaultDatabasePath      = "graphstyle.db"
	DefaultCatalogPath       = "types.toml"
	DefaultDebounceMS        = 150
	DefaultRenderConcurrency = 4
	DefaultLabelColor        = "#17457b"
	DefaultStorageKey        = "graphstyle::user-styling"
	DefaultIconCacheSize     = 256
	DefaultMutationsPerSec   = 20.0
)

var defaultAllowedOrigins = []string{
	"http://localhost",
	"https://localhost",
	"http://127.0.0.1",
	"https://127.0.0.1",
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", defaultAllowedOrigins)
	v.SetDefault("server.mutations_per_second", DefaultMutationsPerSec)

	v.SetDefault("styles.catalog_path", DefaultCatalogPath)
	v.SetDefault("styles.debounce_ms", DefaultDebounceMS)
	v.SetDefault("styles.render_concurrency", DefaultRenderConcurrency)
	v.SetDefault("styles.default_label_color", DefaultLabelColor)
	v.SetDefault("styles.publish_policy", PublishLatest)

	v.SetDefault("preferences.storage_key", DefaultStorageKey)

	v.SetDefault("icons.cache_size", DefaultIconCacheSize)
}

// BindEnvVars explicitly binds the settings most often overridden in deployments
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "GRAPHSTYLE_DATABASE_PATH")
	v.BindEnv("server.port", "GRAPHSTYLE_SERVER_PORT")
	v.BindEnv("styles.catalog_path", "GRAPHSTYLE_CATALOG_PATH")
}

// GetServerPort returns the configured port, or DefaultServerPort if unset
func (c *Config) GetServerPort() int {
	if c.Server.Port == nil {
		return DefaultServerPort
	}
	return *c.Server.Port
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetCatalogPath returns the type catalog file path
func (c *Config) GetCatalogPath() string {
	if c.Styles.CatalogPath == "" {
		return DefaultCatalogPath
	}
	return c.Styles.CatalogPath
}

// GetMutationsPerSecond returns the preference mutation rate limit (0 = unlimited)
func (c *Config) GetMutationsPerSecond() float64 {
	return c.Server.MutationsPerSecond
}

// GetServerAllowedOrigins returns the allowed websocket/CORS origins
func (c *Config) GetServerAllowedOrigins() []string {
	if len(c.Server.AllowedOrigins) == 0 {
		return defaultAllowedOrigins
	}
	return c.Server.AllowedOrigins
}

// GetDebounce returns the catalog change debounce as a duration
func (c *Config) GetDebounce() time.Duration {
	if c.Styles.DebounceMS == 0 {
		return DefaultDebounceMS * time.Millisecond
	}
	return time.Duration(c.Styles.DebounceMS) * time.Millisecond
}

// GetRenderConcurrency returns the per-pass render limit (default: 4)
func (c *Config) GetRenderConcurrency() int {
	if c.Styles.RenderConcurrency == 0 {
		return DefaultRenderConcurrency
	}
	return c.Styles.RenderConcurrency
}

// GetDefaultLabelColor returns the fallback label color
func (c *Config) GetDefaultLabelColor() string {
	if c.Styles.DefaultLabelColor == "" {
		return DefaultLabelColor
	}
	return c.Styles.DefaultLabelColor
}

// GetPublishPolicy returns the publish policy (default: latest)
func (c *Config) GetPublishPolicy() string {
	if c.Styles.PublishPolicy == "" {
		return PublishLatest
	}
	return c.Styles.PublishPolicy
}

// GetStorageKey returns the preference record key
func (c *Config) GetStorageKey() string {
	if c.Preferences.StorageKey == "" {
		return DefaultStorageKey
	}
	return c.Preferences.StorageKey
}

// GetIconCacheSize returns the icon LRU size
func (c *Config) GetIconCacheSize() int {
	if c.Icons.CacheSize == 0 {
		return DefaultIconCacheSize
	}
	return c.Icons.CacheSize
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Server: {Port: %d}, Styles: {Catalog: %s, Policy: %s}}",
		c.GetDatabasePath(), c.GetServerPort(), c.GetCatalogPath(), c.GetPublishPolicy())
}
