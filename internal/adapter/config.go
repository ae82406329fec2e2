package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/spf13/viper"
)

const (
	appName        = "shelf"
	configFileName = "config.yaml"
	envPrefix      = "SHELF"

	defaultTraktURL = "https://api.trakt.tv"
	defaultPageSize = 20
	maxPageSize     = 100
)

// Config holds all application configuration
type Config struct {
	Trakt   TraktConfig   `mapstructure:"trakt"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Paging  PagingConfig  `mapstructure:"paging"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TraktConfig holds API endpoint configuration
type TraktConfig struct {
	URL      string `mapstructure:"url"`
	ClientID string `mapstructure:"client_id"`
}

// CacheConfig holds local storage configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Empty means the OS default
}

// PagingConfig holds list paging configuration
type PagingConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultCategory string `mapstructure:"default_category"`
	Browser         string `mapstructure:"browser"` // Empty means the OS default
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Trakt: TraktConfig{
			URL: defaultTraktURL,
		},
		Paging: PagingConfig{
			PageSize: defaultPageSize,
		},
		UI: UIConfig{
			DefaultCategory: string(domain.CategoryPopular),
		},
		Logging: LoggingConfig{
			File:   defaultLogPath(),
			Level:  "INFO",
			Format: "json",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// newViper registers every key with its default so env overrides
// (SHELF_TRAKT_CLIENT_ID, SHELF_PAGING_PAGE_SIZE, ...) reach Unmarshal.
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setAll(v.SetDefault, cfg)
	return v
}

func setAll(set func(key string, value any), cfg *Config) {
	set("trakt.url", cfg.Trakt.URL)
	set("trakt.client_id", cfg.Trakt.ClientID)
	set("cache.dir", cfg.Cache.Dir)
	set("paging.page_size", cfg.Paging.PageSize)
	set("ui.default_category", cfg.UI.DefaultCategory)
	set("ui.browser", cfg.UI.Browser)
	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
	set("logging.format", cfg.Logging.Format)
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigPath(), ".")
}

// LoadConfigFrom loads configuration from the first config.yaml found in dirs
func LoadConfigFrom(dirs ...string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with
func (c *Config) Validate() error {
	if c.Paging.PageSize <= 0 || c.Paging.PageSize > maxPageSize {
		return fmt.Errorf("paging.page_size must be between 1 and %d, got %d", maxPageSize, c.Paging.PageSize)
	}
	if _, err := domain.ParseShowCategory(c.UI.DefaultCategory); err != nil {
		return fmt.Errorf("ui.default_category: %w", err)
	}
	return nil
}

// SaveConfig saves the configuration to the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(DefaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as config.yaml inside dir
func SaveConfigTo(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v := viper.New()
	setAll(v.Set, cfg)

	configFile := filepath.Join(dir, configFileName)
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true once an API client id is set
func (c *Config) IsConfigured() bool {
	return c.Trakt.ClientID != ""
}

// GetCachePath returns the cache directory, expanding ~ and falling back to the OS default
func (c *Config) GetCachePath() string {
	if c.Cache.Dir == "" {
		return defaultCachePath()
	}
	dir, err := expandHome(c.Cache.Dir)
	if err != nil {
		return defaultCachePath()
	}
	return dir
}

// ClearCache removes all cached data under dir
func ClearCache(dir string) error {
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
