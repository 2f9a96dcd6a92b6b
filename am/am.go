package am

// Config represents the graphstyle configuration
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Server      ServerConfig      `mapstructure:"server"`
	Styles      StylesConfig      `mapstructure:"styles"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Icons       IconsConfig       `mapstructure:"icons"`
}

// DatabaseConfig configures the SQLite database holding persisted preferences
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the style publication server
type ServerConfig struct {
	Port               *int     `mapstructure:"port"` // nil = default 8787, 0 is invalid
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	MutationsPerSecond float64  `mapstructure:"mutations_per_second"` // 0 = unlimited
}

// StylesConfig configures the style resolution engine and its catalog
type StylesConfig struct {
	CatalogPath       string `mapstructure:"catalog_path"`
	DebounceMS        int    `mapstructure:"debounce_ms"`         // catalog change debounce
	RenderConcurrency int    `mapstructure:"render_concurrency"`  // parallel vertex icon renders per pass
	DefaultLabelColor string `mapstructure:"default_label_color"` // used when neither config nor override sets one
	PublishPolicy     string `mapstructure:"publish_policy"`      // latest | last-settled
}

// PreferencesConfig configures the preference store
type PreferencesConfig struct {
	StorageKey string `mapstructure:"storage_key"`
}

// IconsConfig configures the default vertex icon renderer
type IconsConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

// Publish policies for overlapping resolution passes
const (
	PublishLatest      = "latest"
	PublishLastSettled = "last-settled"
)

// Server port constants
const (
	DefaultServerPort = 8787
)

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
