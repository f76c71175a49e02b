package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the dashboard configuration loaded from files and environment variables.
type Config struct {
	AppName       string `mapstructure:"app_name"`
	Env           string `mapstructure:"app_env"`
	LogLevel      string `mapstructure:"log_level"`
	SourcesFile   string `mapstructure:"sources_file"`
	SourceID      string `mapstructure:"source_id"`
	RenderersFile string `mapstructure:"renderers_file"`

	DefaultTimeWindow string `mapstructure:"default_time_window"`
	DefaultViewMode   string `mapstructure:"default_view_mode"`
	MaxRetries        int    `mapstructure:"max_retries"`
	DisplayTimezone   string `mapstructure:"display_timezone"`

	RefreshIntervalSeconds int64         `mapstructure:"refresh_interval"`
	RefreshInterval        time.Duration `mapstructure:"-"`
	RequestTimeoutSeconds  int64         `mapstructure:"request_timeout"`
	RequestTimeout         time.Duration `mapstructure:"-"`

	StorageType string `mapstructure:"storage_type"`
	BBoltDir    string `mapstructure:"bbolt_dir"`

	TracingEnabled bool `mapstructure:"tracing_enabled"`

	Location *time.Location `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-market-pulse")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("source_id", "")
	v.SetDefault("renderers_file", "./configs/renderers.yaml")
	v.SetDefault("default_time_window", "24h")
	v.SetDefault("default_view_mode", "grid")
	v.SetDefault("max_retries", 3)
	v.SetDefault("display_timezone", "Local")
	v.SetDefault("refresh_interval", 0) // seconds, 0 disables auto refresh
	v.SetDefault("request_timeout", 15) // seconds
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_dir", "") // empty uses the OS temp directory
	v.SetDefault("tracing_enabled", false)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations and the display location.
func (c *Config) finalize() error {
	if c.RefreshIntervalSeconds < 0 {
		return fmt.Errorf("invalid refresh_interval (must be zero or positive seconds)")
	}
	c.RefreshInterval = time.Duration(c.RefreshIntervalSeconds) * time.Second

	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout (must be positive seconds)")
	}
	c.RequestTimeout = time.Duration(c.RequestTimeoutSeconds) * time.Second

	if c.MaxRetries <= 0 {
		return fmt.Errorf("invalid max_retries (must be positive)")
	}

	c.DefaultTimeWindow = strings.ToLower(strings.TrimSpace(c.DefaultTimeWindow))
	switch c.DefaultTimeWindow {
	case "6h", "24h", "7d", "30d":
	default:
		return fmt.Errorf("invalid default_time_window %q", c.DefaultTimeWindow)
	}

	c.DefaultViewMode = strings.ToLower(strings.TrimSpace(c.DefaultViewMode))
	switch c.DefaultViewMode {
	case "grid", "list":
	default:
		return fmt.Errorf("invalid default_view_mode %q", c.DefaultViewMode)
	}

	loc, err := time.LoadLocation(strings.TrimSpace(c.DisplayTimezone))
	if err != nil {
		return fmt.Errorf("load display_timezone: %w", err)
	}
	c.Location = loc

	return nil
}
