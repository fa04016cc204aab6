package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marketlens/internal/models"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Run full technical analysis for a symbol",
		Long: `Run the full analysis pipeline over a candle series and print the report.

Candles are read from a JSON file when --file is given, otherwise from the
local store. The report covers indicators, candlestick patterns,
support/resistance, trend, Wyckoff phase, and a composite recommendation.`,
		Example: `  marketlens analyze AAPL --file aapl_daily.json
  marketlens analyze MSFT --days 250
  marketlens analyze NVDA --days 100 --save --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			file, _ := cmd.Flags().GetString("file")
			timeframe, _ := cmd.Flags().GetString("timeframe")
			days, _ := cmd.Flags().GetInt("days")
			save, _ := cmd.Flags().GetBool("save")

			candles, err := loadCandles(ctx, app, symbol, file, timeframe, days)
			if err != nil {
				output.Error("Failed to load candles: %v", err)
				return err
			}
			if len(candles) == 0 {
				output.Error("No candles found for %s", symbol)
				return fmt.Errorf("no candles for %s", symbol)
			}

			report, err := app.Analyzer.Analyze(ctx, symbol, candles, time.Now())
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if save {
				if app.Store == nil {
					output.Warning("Store unavailable, report not saved")
				} else if err := app.Store.SaveReport(ctx, report); err != nil {
					output.Warning("Failed to save report: %v", err)
				}
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderReport(output, report, app.Config.UI.DateFormat)
			return nil
		},
	}

	cmd.Flags().String("file", "", "JSON file with a candle series")
	cmd.Flags().String("timeframe", "1day", "timeframe of stored candles")
	cmd.Flags().Int("days", 200, "days of stored history to analyze")
	cmd.Flags().Bool("save", false, "persist the report to the store")

	return cmd
}

// loadCandles reads candles from a JSON file or from the store.
func loadCandles(ctx context.Context, app *App, symbol, file, timeframe string, days int) ([]models.Candle, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var candles []models.Candle
		if err := json.Unmarshal(data, &candles); err != nil {
			return nil, fmt.Errorf("invalid candle file: %w", err)
		}
		return candles, nil
	}

	if app.Store == nil {
		return nil, fmt.Errorf("no store configured, use --file")
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	return app.Store.GetCandles(ctx, symbol, timeframe, from, to)
}

func renderReport(output *Output, report *models.AnalysisReport, dateFormat string) {
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}

	output.Bold("%s — %s", report.Symbol, report.GeneratedAt.Format(dateFormat))
	output.Printf("  Current Price:   %s\n", FormatPrice(report.CurrentPrice))
	output.Println()

	ind := report.Indicators
	output.Bold("Indicators")
	output.Printf("  RSI(14):         %.2f\n", ind.RSI)
	output.Printf("  MACD:            %.4f  signal %.4f  hist %.4f\n", ind.MACD, ind.MACDSignal, ind.MACDHistogram)
	output.Printf("  SMA 20/50/200:   %s / %s / %s\n", FormatPrice(ind.SMA20), FormatPrice(ind.SMA50), FormatPrice(ind.SMA200))
	output.Printf("  EMA 12/26:       %s / %s\n", FormatPrice(ind.EMA12), FormatPrice(ind.EMA26))
	output.Printf("  Bollinger:       %s\n", FormatRange(ind.BollingerLower, ind.BollingerUpper))
	output.Println()

	output.Bold("Patterns")
	if len(report.Patterns) == 0 {
		output.Dim("  none detected")
	}
	for _, p := range report.Patterns {
		line := fmt.Sprintf("  %-22s %s  confidence %s", p.Name, p.Type, FormatConfidence(p.Confidence))
		switch p.Type {
		case models.PatternBullish:
			output.Bullish("%s", line)
		case models.PatternBearish:
			output.Bearish("%s", line)
		default:
			output.Println(strings.TrimRight(line, " "))
		}
	}
	output.Println()

	output.Bold("Support / Resistance")
	output.Printf("  Supports:        %s\n", formatLevels(report.SupportResistance.SupportLevels))
	output.Printf("  Resistances:     %s\n", formatLevels(report.SupportResistance.ResistanceLevels))
	output.Println()

	output.Bold("Trend")
	output.Printf("  Direction:       %s\n", report.Trend.Trend)
	output.Printf("  Strength:        %.2f\n", report.Trend.Strength)
	output.Printf("  Trend Line:      %s\n", FormatPrice(report.Trend.TrendLine))
	output.Println()

	renderWyckoff(output, report.Wyckoff, dateFormat)

	output.Bold("Price Ranges")
	output.Printf("  Buy:             %s\n", FormatRange(report.BuyRange.Min, report.BuyRange.Max))
	output.Printf("  Half Buy:        %s\n", FormatRange(report.HalfBuyRange.Min, report.HalfBuyRange.Max))
	output.Printf("  Sell:            %s\n", FormatRange(report.SellRange.Min, report.SellRange.Max))
	output.Println()

	output.Bold("Recommendation")
	output.Printf("  %s  score %s\n", output.Recommendation(string(report.Recommendation)), output.FormatScore(report.RecommendationScore))
}

func renderWyckoff(output *Output, w models.WyckoffAnalysis, dateFormat string) {
	output.Bold("Wyckoff")
	output.Printf("  Phase:           %s  confidence %s\n", w.Phase, FormatConfidence(w.PhaseConfidence))
	output.Printf("  Trading Range:   %s\n", FormatRange(w.TradingRange.Min, w.TradingRange.Max))
	output.Printf("  Effort/Result:   %s\n", w.EffortResult)
	output.Printf("  Recommendation:  %s  score %s\n", w.Recommendation, output.FormatScore(w.RecommendationScore))

	if len(w.Events) > 0 {
		table := NewTable(output, "Event", "Bias", "Date", "Price", "Volume", "Conf")
		for _, e := range w.Events {
			table.AddRow(
				e.Name,
				string(e.Type),
				e.Date.Format(dateFormat),
				FormatPrice(e.Price),
				FormatVolume(e.Volume),
				FormatConfidence(e.Confidence),
			)
		}
		table.Render()
	}
	output.Println()
}

func formatLevels(levels []float64) string {
	if len(levels) == 0 {
		return "none"
	}
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = FormatPrice(l)
	}
	return strings.Join(parts, ", ")
}
