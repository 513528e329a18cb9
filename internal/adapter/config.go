package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SourceType identifies a meta data provider backend
type SourceType string

const (
	SourceTypeKitsu   SourceType = "kitsu"
	SourceTypeAniList SourceType = "anilist"
)

// Config holds all application configuration
type Config struct {
	Providers []ProviderConfig `mapstructure:"providers"`
	Store     StoreConfig      `mapstructure:"store"`
	Migration MigrationConfig  `mapstructure:"migration"`
	UI        UIConfig         `mapstructure:"ui"`
	Browser   BrowserConfig    `mapstructure:"browser"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// ProviderConfig configures one loader
type ProviderConfig struct {
	Type    SourceType    `mapstructure:"type"`     // "kitsu" or "anilist"
	BaseURL string        `mapstructure:"base_url"` // API endpoint, empty for the public one
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Path string `mapstructure:"path"` // Directory of the database, empty = memory only
}

// MigrationConfig holds the default migration direction
type MigrationConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	Plain bool `mapstructure:"plain"` // Never start the TUI
}

// BrowserConfig holds the command used to open provider pages
type BrowserConfig struct {
	Command string   `mapstructure:"command"` // Empty = system default
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"` // Empty = default path, "off" = disabled
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Providers: []ProviderConfig{
			{Type: SourceTypeKitsu, Timeout: 30 * time.Second},
			{Type: SourceTypeAniList, Timeout: 30 * time.Second},
		},
		Store: StoreConfig{
			Path: defaultCachePath(),
		},
		UI: UIConfig{
			Plain: false,
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
		return filepath.Join(os.Getenv("APPDATA"), "kanshi", "kanshi.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "kanshi", "kanshi.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "kanshi")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "kanshi")
	}
}

// defaultCachePath returns the default data directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "kanshi", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "kanshi", "cache")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}
	return decode(v)
}

// LoadConfigFile loads configuration from an explicit file and environment
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return decode(v)
}

// newViper returns a viper instance with defaults and environment overrides
// (KANSHI_LOGGING_LEVEL, KANSHI_UI_PLAIN, ...).
func newViper() *viper.Viper {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("migration.from", def.Migration.From)
	v.SetDefault("migration.to", def.Migration.To)
	v.SetDefault("ui.plain", def.UI.Plain)
	v.SetDefault("browser.command", def.Browser.Command)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetEnvPrefix("KANSHI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if v.IsSet("providers") {
		// A configured provider list replaces the defaults instead of merging.
		cfg.Providers = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the provider list
func (c *Config) Validate() error {
	seen := make(map[SourceType]bool)
	for _, p := range c.Providers {
		switch p.Type {
		case SourceTypeKitsu, SourceTypeAniList:
		default:
			return fmt.Errorf("unknown provider type: %q", p.Type)
		}
		if seen[p.Type] {
			return fmt.Errorf("provider %q configured twice", p.Type)
		}
		seen[p.Type] = true
	}
	return nil
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigAs(cfg, filepath.Join(defaultConfigPath(), "config.yaml"))
}

// SaveConfigAs saves the configuration to path
func SaveConfigAs(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	providers := make([]map[string]interface{}, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers = append(providers, map[string]interface{}{
			"type":     string(p.Type),
			"base_url": p.BaseURL,
			"timeout":  p.Timeout.String(),
		})
	}
	v.Set("providers", providers)

	v.Set("store.path", cfg.Store.Path)

	v.Set("migration.from", cfg.Migration.From)
	v.Set("migration.to", cfg.Migration.To)

	v.Set("ui.plain", cfg.UI.Plain)

	v.Set("browser.command", cfg.Browser.Command)
	v.Set("browser.args", cfg.Browser.Args)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes all cached data
func ClearCache(cfg *Config) error {
	if cfg.Store.Path == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Store.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
