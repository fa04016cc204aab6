// Package cli provides the command-line interface for the analysis engine.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"marketlens/internal/analysis"
	"marketlens/internal/config"
	"marketlens/internal/logging"
	"marketlens/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-01-05"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Analyzer *analysis.Analyzer
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Analyzer: analysis.NewAnalyzer(analysisConfig(cfg), logger),
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, history features unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "marketlens",
		Short: "MarketLens - deterministic technical analysis CLI",
		Long: `MarketLens turns an OHLCV candle series into a structured analysis report:
indicators, candlestick patterns, support/resistance, trend, Wyckoff phase,
and a composite buy/sell/hold recommendation with price ranges.

Use 'marketlens help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/marketlens)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newScanCmd(app))

	return rootCmd
}

// analysisConfig maps the file configuration onto the component settings.
func analysisConfig(cfg *config.Config) analysis.Config {
	ac := analysis.DefaultConfig()
	if cfg == nil {
		return ac
	}
	if cfg.Analysis.MinWyckoffBars > 0 {
		ac.Wyckoff.MinBars = cfg.Analysis.MinWyckoffBars
	}
	if cfg.Analysis.RangeLookback > 0 {
		ac.Wyckoff.RangeLookback = cfg.Analysis.RangeLookback
	}
	if cfg.Analysis.PivotLookback > 0 {
		ac.Levels.PivotLookback = cfg.Analysis.PivotLookback
	}
	if cfg.Analysis.MergeThreshold > 0 {
		ac.Levels.MergeThreshold = cfg.Analysis.MergeThreshold
	}
	if cfg.Analysis.BuyThreshold != 0 {
		ac.Wyckoff.BuyThreshold = cfg.Analysis.BuyThreshold
	}
	if cfg.Analysis.SellThreshold != 0 {
		ac.Wyckoff.SellThreshold = cfg.Analysis.SellThreshold
	}
	return ac
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("MarketLens v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a configuration template",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path, err := config.WriteTemplate(config.DefaultConfigDir())
			if err != nil {
				output.Error("Failed to write template: %v", err)
				return err
			}
			output.Success("Configuration template written to %s", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Server Configuration")
	output.Printf("  Host:            %s\n", cfg.Server.Host)
	output.Printf("  Port:            %d\n", cfg.Server.Port)
	output.Println()

	output.Bold("Store Configuration")
	output.Printf("  Path:            %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Analysis Configuration")
	output.Printf("  Min Wyckoff Bars: %d\n", cfg.Analysis.MinWyckoffBars)
	output.Printf("  Range Lookback:  %d\n", cfg.Analysis.RangeLookback)
	output.Printf("  Pivot Lookback:  %d\n", cfg.Analysis.PivotLookback)
	output.Printf("  Merge Threshold: %.3f\n", cfg.Analysis.MergeThreshold)
	output.Printf("  Buy Threshold:   %.2f\n", cfg.Analysis.BuyThreshold)
	output.Printf("  Sell Threshold:  %.2f\n", cfg.Analysis.SellThreshold)
	output.Printf("  Workers:         %d\n", cfg.Analysis.Workers)
	output.Println()

	output.Bold("Logging Configuration")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %s\n", cfg.Logging.File)

	return nil
}
