// Package config provides configuration management for focus.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/xvierd/flow-focus/internal/domain"
)

// defaultDataDir is expanded against the user's home directory on load.
const defaultDataDir = "~/.focus"

// Config holds all configuration for the focus application.
type Config struct {
	Focus         FocusConfig        `mapstructure:"focus"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Log           LogConfig          `mapstructure:"log"`
}

// FocusConfig holds focus session settings.
type FocusConfig struct {
	DefaultDuration Duration `mapstructure:"default_duration"`
	ShortBreak      Duration `mapstructure:"short_break"`
	LongBreak       Duration `mapstructure:"long_break"`
	DisplayTimeout  Duration `mapstructure:"display_timeout"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// MetricsConfig holds OTLP metrics exporter settings.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel parses the configured level, falling back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
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
		Focus: FocusConfig{
			DefaultDuration: Duration(domain.DefaultDuration),
			ShortBreak:      Duration(domain.DefaultShortBreak),
			LongBreak:       Duration(domain.DefaultLongBreak),
			DisplayTimeout:  Duration(250 * time.Millisecond),
		},
		Notifications: NotificationConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Insecure: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration from the default config file, creating it
// with defaults if it does not exist.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath. FOCUS_* environment
// variables override file values, e.g. FOCUS_LOG_LEVEL=debug.
func LoadFrom(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	setDefaults(v)
	v.SetEnvPrefix("FOCUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	return &cfg, nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes the configuration to configPath.
func SaveTo(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)
	v.Set("focus.default_duration", cfg.Focus.DefaultDuration.String())
	v.Set("focus.short_break", cfg.Focus.ShortBreak.String())
	v.Set("focus.long_break", cfg.Focus.LongBreak.String())
	v.Set("focus.display_timeout", cfg.Focus.DisplayTimeout.String())
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("metrics.enabled", cfg.Metrics.Enabled)
	v.Set("metrics.endpoint", cfg.Metrics.Endpoint)
	v.Set("metrics.insecure", cfg.Metrics.Insecure)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".focus", "config.toml"), nil
}

// GetDBPath returns the path to the session history database.
func GetDBPath(cfg *Config) string {
	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		dataDir = cfg.Storage.DataDir
	}
	return filepath.Join(dataDir, "focus.db")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	return v
}

// setDefaults sets default values for keys missing from the file.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("focus.default_duration", defaults.Focus.DefaultDuration.String())
	v.SetDefault("focus.short_break", defaults.Focus.ShortBreak.String())
	v.SetDefault("focus.long_break", defaults.Focus.LongBreak.String())
	v.SetDefault("focus.display_timeout", defaults.Focus.DisplayTimeout.String())
	v.SetDefault("notifications.enabled", defaults.Notifications.Enabled)
	v.SetDefault("storage.data_dir", defaults.Storage.DataDir)
	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.endpoint", defaults.Metrics.Endpoint)
	v.SetDefault("metrics.insecure", defaults.Metrics.Insecure)
	v.SetDefault("log.level", defaults.Log.Level)
}

func expandHome(path string) (string, error) {
	if path == "" {
		path = defaultDataDir
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
