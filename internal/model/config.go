package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g.
// TICKETWATCH_POLLING_INTERVAL_MS=5000.
const envPrefix = "TICKETWATCH"

// ServiceConfig describes how to reach the ticket data service.
type ServiceConfig struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TokenKey is the keyring entry holding the bearer token.
	TokenKey string `mapstructure:"token_key" yaml:"token_key"`

	// RequestTimeoutSec bounds a single HTTP request.
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
}

// PollingConfig controls the per-screen poll schedulers.
type PollingConfig struct {
	// IntervalMS is the time between poll cycles.
	IntervalMS int `mapstructure:"interval_ms" yaml:"interval_ms"`

	// FetchTimeoutSec bounds one fetch within a cycle.
	FetchTimeoutSec int `mapstructure:"fetch_timeout_sec" yaml:"fetch_timeout_sec"`
}

// NotificationsConfig controls the notification tray.
type NotificationsConfig struct {
	// RetentionSec is how long an unpinned notification stays visible.
	RetentionSec int `mapstructure:"retention_sec" yaml:"retention_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// File receives log output. The terminal belongs to the UI.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Service       ServiceConfig       `mapstructure:"service" yaml:"service"`
	Polling       PollingConfig       `mapstructure:"polling" yaml:"polling"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
	Display       DisplayConfig       `mapstructure:"display" yaml:"display"`
	Log           LogConfig           `mapstructure:"log" yaml:"log"`
}

// PollInterval returns the configured poll interval.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Polling.IntervalMS) * time.Millisecond
}

// FetchTimeout returns the configured per-fetch timeout.
func (c *AppConfig) FetchTimeout() time.Duration {
	return time.Duration(c.Polling.FetchTimeoutSec) * time.Second
}

// Retention returns how long unpinned notifications are kept.
func (c *AppConfig) Retention() time.Duration {
	return time.Duration(c.Notifications.RetentionSec) * time.Second
}

// RequestTimeout returns the HTTP request timeout.
func (c *AppConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Service.RequestTimeoutSec) * time.Second
}

// DefaultConfigDir returns ~/.config/ticketwatch.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ticketwatch")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/ticketwatch/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// defaultAppConfig returns the built-in configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Service: ServiceConfig{
			BaseURL:           "http://localhost:8000/api",
			TokenKey:          "service-token",
			RequestTimeoutSec: 30,
		},
		Polling: PollingConfig{
			IntervalMS:      3000,
			FetchTimeoutSec: 30,
		},
		Notifications: NotificationsConfig{
			RetentionSec: 30,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(DefaultConfigDir(), "ticketwatch.log"),
		},
	}
}

// setDefaults mirrors defaultAppConfig into v so that every key can be
// overridden from the environment even when absent from the file.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("service.base_url", d.Service.BaseURL)
	v.SetDefault("service.token_key", d.Service.TokenKey)
	v.SetDefault("service.request_timeout_sec", d.Service.RequestTimeoutSec)
	v.SetDefault("polling.interval_ms", d.Polling.IntervalMS)
	v.SetDefault("polling.fetch_timeout_sec", d.Polling.FetchTimeoutSec)
	v.SetDefault("notifications.retention_sec", d.Notifications.RetentionSec)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. A .env file in the working directory is loaded first and
// TICKETWATCH_* environment variables override file values. A missing
// file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Service.BaseURL) == "" {
		return errors.New("service.base_url must not be empty")
	}
	if c.Polling.IntervalMS <= 0 {
		return fmt.Errorf("polling.interval_ms must be positive, got %d", c.Polling.IntervalMS)
	}
	if c.Polling.FetchTimeoutSec <= 0 {
		return fmt.Errorf("polling.fetch_timeout_sec must be positive, got %d", c.Polling.FetchTimeoutSec)
	}
	if c.Notifications.RetentionSec <= 0 {
		return fmt.Errorf("notifications.retention_sec must be positive, got %d", c.Notifications.RetentionSec)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("service", cfg.Service)
	v.Set("polling", cfg.Polling)
	v.Set("notifications", cfg.Notifications)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
