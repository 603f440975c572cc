package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete phoenix configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Finalize FinalizeConfig `mapstructure:"finalize"`
}

// APIConfig locates the remote completion service.
type APIConfig struct {
	// BaseURL is the scheme and host of the service (e.g., "https://api.example.com")
	BaseURL string `mapstructure:"base_url"`
	// CompletePath is the path of the subtask completion endpoint
	CompletePath string `mapstructure:"complete_path"`
	// TimeoutSeconds bounds a single HTTP exchange at the transport level (0 = no timeout)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// StorageConfig selects where answers are persisted.
type StorageConfig struct {
	// Backend is one of "file", "sqlite" or "memory" (default: "file")
	Backend string `mapstructure:"backend"`
	// Dir overrides the data directory. Empty means DataDir().
	Dir string `mapstructure:"dir"`
}

// CatalogConfig controls where subtask definitions come from.
type CatalogConfig struct {
	// Path to a YAML catalog replacing the embedded one. Empty uses the embedded catalog.
	Path string `mapstructure:"path"`
}

// LoggingConfig controls debug logging.
type LoggingConfig struct {
	// Enabled writes a JSON log file to the data directory (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is one of "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// FinalizeConfig controls the completion handshake.
type FinalizeConfig struct {
	// ProcessLock guards a subtask against concurrent finalize from two processes (default: true)
	ProcessLock bool `mapstructure:"process_lock"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://api.phoenix.example",
			CompletePath:   "/api/pelekan/subtask/complete",
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     "", // Empty means DataDir()
		},
		Catalog: CatalogConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Finalize: FinalizeConfig{
			ProcessLock: true,
		},
	}
}

// SetDefaults registers default values with viper.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.complete_path", defaults.API.CompletePath)
	viper.SetDefault("api.timeout_seconds", defaults.API.TimeoutSeconds)

	viper.SetDefault("storage.backend", defaults.Storage.Backend)
	viper.SetDefault("storage.dir", defaults.Storage.Dir)

	viper.SetDefault("catalog.path", defaults.Catalog.Path)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	viper.SetDefault("finalize.process_lock", defaults.Finalize.ProcessLock)
}

// Init wires viper to the config file and PHOENIX_* environment variables.
// An explicit path wins over the default location. A missing default file is not an error.
func Init(path string) error {
	SetDefaults()

	viper.SetEnvPrefix("PHOENIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}

	viper.SetConfigFile(ConfigFile())
	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(ConfigFile()); os.IsNotExist(statErr) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// CompleteURL joins the base URL and completion path.
func (a *APIConfig) CompleteURL() string {
	base := strings.TrimRight(a.BaseURL, "/")
	path := "/" + strings.TrimLeft(a.CompletePath, "/")
	return base + path
}

// Timeout returns the transport timeout as a time.Duration (0 means none).
func (a *APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ResolveDir returns the storage directory, defaulting to DataDir().
func (s *StorageConfig) ResolveDir() string {
	if s.Dir == "" {
		return DataDir()
	}
	if strings.HasPrefix(s.Dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, s.Dir[2:])
		}
	}
	return s.Dir
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "phoenix")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".phoenix"
	}
	return filepath.Join(home, ".config", "phoenix")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the directory holding answers and logs.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "phoenix")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".phoenix"
	}
	return filepath.Join(home, ".local", "share", "phoenix")
}

// ValidBackends returns the supported storage backends.
func ValidBackends() []string {
	return []string{"file", "sqlite", "memory"}
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
