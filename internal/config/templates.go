package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# marketlens configuration

[server]
# HTTP listen address for the analysis service
host = "0.0.0.0"
port = 8080

[store]
# SQLite database for candles and generated reports
path = "~/.config/marketlens/marketlens.db"

[logging]
# Log level: trace, debug, info, warn, error
level = "info"
# Optional rotating log file; empty disables file logging
file = ""
max_size_mb = 10
max_backups = 3
max_age_days = 28
# Also log to the console
console = true

[analysis]
# Minimum bars before Wyckoff analysis produces a phase
min_wyckoff_bars = 30
# Trailing bars used to detect the trading range
range_lookback = 60
# Bars on each side a support/resistance pivot must dominate
pivot_lookback = 5
# Relative distance under which nearby levels merge
merge_threshold = 0.02
# Composite score cutoffs for buy/sell recommendations
buy_threshold = 0.3
sell_threshold = -0.3
# Indicator engine worker pool size
workers = 4

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "2006-01-02"
`

// WriteTemplate writes the default config.toml into configDir, creating
// the directory when needed. Existing files are left untouched.
func WriteTemplate(configDir string) (string, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing config template: %w", err)
	}

	return path, nil
}
