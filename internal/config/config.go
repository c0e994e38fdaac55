// Package config provides configuration management for Dugger.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	gitadapter "github.com/duggerlink/dugger/internal/adapters/git"
)

// Config holds all configuration for the Dugger application.
type Config struct {
	Git           GitConfig          `mapstructure:"git"`
	Health        HealthConfig       `mapstructure:"health"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// GitConfig holds the process timeout and the per-fact cache lifetimes.
// Each fact has its own TTL because access patterns differ: status changes
// far more often during active editing than remote configuration.
type GitConfig struct {
	Timeout         Duration `mapstructure:"timeout"`
	BranchTTL       Duration `mapstructure:"branch_ttl"`
	StatusTTL       Duration `mapstructure:"status_ttl"`
	UntrackedTTL    Duration `mapstructure:"untracked_ttl"`
	CommitHashTTL   Duration `mapstructure:"commit_hash_ttl"`
	CommitCountTTL  Duration `mapstructure:"commit_count_ttl"`
	RemoteURLTTL    Duration `mapstructure:"remote_url_ttl"`
	ChangedFilesTTL Duration `mapstructure:"changed_files_ttl"`
}

// ToTTLConfig converts the configured lifetimes to the adapter's form.
func (c *GitConfig) ToTTLConfig() gitadapter.TTLConfig {
	return gitadapter.TTLConfig{
		Branch:       time.Duration(c.BranchTTL),
		Dirty:        time.Duration(c.StatusTTL),
		Untracked:    time.Duration(c.UntrackedTTL),
		CommitHash:   time.Duration(c.CommitHashTTL),
		CommitCount:  time.Duration(c.CommitCountTTL),
		RemoteURL:    time.Duration(c.RemoteURLTTL),
		ChangedFiles: time.Duration(c.ChangedFilesTTL),
	}
}

// HealthConfig holds health scoring settings.
type HealthConfig struct {
	BaseScore        int `mapstructure:"base_score"`
	HealthyThreshold int `mapstructure:"healthy_threshold"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// ThemeConfig holds dashboard customization settings (colors and icons).
type ThemeConfig struct {
	ColorHealthy   string `mapstructure:"color_healthy"`
	ColorUnhealthy string `mapstructure:"color_unhealthy"`
	ColorTitle     string `mapstructure:"color_title"`
	ColorDim       string `mapstructure:"color_dim"`
	ColorAccent    string `mapstructure:"color_accent"`
	IconClean      string `mapstructure:"icon_clean"`
	IconDirty      string `mapstructure:"icon_dirty"`
	IconBranch     string `mapstructure:"icon_branch"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorHealthy:   "#2ECC71",
		ColorUnhealthy: "#E74C3C",
		ColorTitle:     "#6B7280",
		ColorDim:       "#95A5A6",
		ColorAccent:    "#7C6FE0",
		IconClean:      "✓",
		IconDirty:      "●",
		IconBranch:     "🌿",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Git: GitConfig{
			Timeout:         Duration(5 * time.Second),
			BranchTTL:       Duration(60 * time.Second),
			StatusTTL:       Duration(30 * time.Second),
			UntrackedTTL:    Duration(30 * time.Second),
			CommitHashTTL:   Duration(60 * time.Second),
			CommitCountTTL:  Duration(60 * time.Second),
			RemoteURLTTL:    Duration(120 * time.Second),
			ChangedFilesTTL: Duration(60 * time.Second),
		},
		Health: HealthConfig{
			BaseScore:        100,
			HealthyThreshold: 80,
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			DataDir: "~/.dugger",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the config file.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	// Set defaults
	setDefaults()

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in data directory
	if cfg.Storage.DataDir == "~/.dugger" || cfg.Storage.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(homeDir, ".dugger")
	}

	return &cfg, nil
}

// Save saves the configuration to the config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	viper.Set("git.timeout", cfg.Git.Timeout.String())
	viper.Set("git.branch_ttl", cfg.Git.BranchTTL.String())
	viper.Set("git.status_ttl", cfg.Git.StatusTTL.String())
	viper.Set("git.untracked_ttl", cfg.Git.UntrackedTTL.String())
	viper.Set("git.commit_hash_ttl", cfg.Git.CommitHashTTL.String())
	viper.Set("git.commit_count_ttl", cfg.Git.CommitCountTTL.String())
	viper.Set("git.remote_url_ttl", cfg.Git.RemoteURLTTL.String())
	viper.Set("git.changed_files_ttl", cfg.Git.ChangedFilesTTL.String())
	viper.Set("health.base_score", cfg.Health.BaseScore)
	viper.Set("health.healthy_threshold", cfg.Health.HealthyThreshold)
	viper.Set("notifications.enabled", cfg.Notifications.Enabled)
	viper.Set("mcp.enabled", cfg.MCP.Enabled)
	viper.Set("storage.data_dir", cfg.Storage.DataDir)
	viper.Set("theme.color_healthy", cfg.Theme.ColorHealthy)
	viper.Set("theme.color_unhealthy", cfg.Theme.ColorUnhealthy)
	viper.Set("theme.color_title", cfg.Theme.ColorTitle)
	viper.Set("theme.color_dim", cfg.Theme.ColorDim)
	viper.Set("theme.color_accent", cfg.Theme.ColorAccent)
	viper.Set("theme.icon_clean", cfg.Theme.IconClean)
	viper.Set("theme.icon_dirty", cfg.Theme.IconDirty)
	viper.Set("theme.icon_branch", cfg.Theme.IconBranch)

	return viper.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".dugger", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "dugger.db")
}

// setDefaults sets default values for viper.
func setDefaults() {
	viper.SetDefault("git.timeout", "5s")
	viper.SetDefault("git.branch_ttl", "1m0s")
	viper.SetDefault("git.status_ttl", "30s")
	viper.SetDefault("git.untracked_ttl", "30s")
	viper.SetDefault("git.commit_hash_ttl", "1m0s")
	viper.SetDefault("git.commit_count_ttl", "1m0s")
	viper.SetDefault("git.remote_url_ttl", "2m0s")
	viper.SetDefault("git.changed_files_ttl", "1m0s")
	viper.SetDefault("health.base_score", 100)
	viper.SetDefault("health.healthy_threshold", 80)
	viper.SetDefault("notifications.enabled", true)
	viper.SetDefault("mcp.enabled", true)
	viper.SetDefault("storage.data_dir", "~/.dugger")

	// Theme defaults
	defaults := DefaultThemeConfig()
	viper.SetDefault("theme.color_healthy", defaults.ColorHealthy)
	viper.SetDefault("theme.color_unhealthy", defaults.ColorUnhealthy)
	viper.SetDefault("theme.color_title", defaults.ColorTitle)
	viper.SetDefault("theme.color_dim", defaults.ColorDim)
	viper.SetDefault("theme.color_accent", defaults.ColorAccent)
	viper.SetDefault("theme.icon_clean", defaults.IconClean)
	viper.SetDefault("theme.icon_dirty", defaults.IconDirty)
	viper.SetDefault("theme.icon_branch", defaults.IconBranch)
}
