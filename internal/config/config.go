// Package config provides configuration management for the analysis engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	UI       UIConfig       `mapstructure:"ui"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Console    bool   `mapstructure:"console"`
}

// AnalysisConfig holds the tunable analysis thresholds that are worth
// exposing in the config file. Anything not listed here keeps its
// component default.
type AnalysisConfig struct {
	MinWyckoffBars int     `mapstructure:"min_wyckoff_bars"`
	RangeLookback  int     `mapstructure:"range_lookback"`
	PivotLookback  int     `mapstructure:"pivot_lookback"`
	MergeThreshold float64 `mapstructure:"merge_threshold"`
	BuyThreshold   float64 `mapstructure:"buy_threshold"`
	SellThreshold  float64 `mapstructure:"sell_threshold"`
	Workers        int     `mapstructure:"workers"`
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/marketlens"
	}
	return filepath.Join(home, ".config", "marketlens")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config file yields the defaults rather than an error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath("./configs")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.path", filepath.Join(DefaultConfigDir(), "marketlens.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("logging.console", true)
	v.SetDefault("analysis.min_wyckoff_bars", 30)
	v.SetDefault("analysis.range_lookback", 60)
	v.SetDefault("analysis.pivot_lookback", 5)
	v.SetDefault("analysis.merge_threshold", 0.02)
	v.SetDefault("analysis.buy_threshold", 0.3)
	v.SetDefault("analysis.sell_threshold", -0.3)
	v.SetDefault("analysis.workers", 4)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETLENS_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MARKETLENS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MARKETLENS_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("MARKETLENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 0 and 65535")
	}

	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Analysis.MinWyckoffBars < 0 {
		return fmt.Errorf("min_wyckoff_bars must be non-negative")
	}
	if c.Analysis.PivotLookback < 1 {
		return fmt.Errorf("pivot_lookback must be at least 1")
	}
	if c.Analysis.MergeThreshold < 0 || c.Analysis.MergeThreshold > 1 {
		return fmt.Errorf("merge_threshold must be between 0 and 1")
	}
	if c.Analysis.BuyThreshold < c.Analysis.SellThreshold {
		return fmt.Errorf("buy_threshold must be above sell_threshold")
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}

	return nil
}
