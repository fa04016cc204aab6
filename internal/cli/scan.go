package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marketlens/internal/scan"
)

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Analyze every stored symbol and rank by score",
		Long: `Run the full analysis pipeline over every symbol in the local store
and print the results ranked by composite score, strongest buy first.`,
		Example: `  marketlens scan
  marketlens scan --days 250 --workers 8 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			timeframe, _ := cmd.Flags().GetString("timeframe")
			days, _ := cmd.Flags().GetInt("days")
			workers, _ := cmd.Flags().GetInt("workers")
			if workers <= 0 {
				workers = app.Config.Analysis.Workers
			}

			if app.Store == nil {
				output.Error("Store unavailable")
				return fmt.Errorf("store unavailable")
			}

			scanner := scan.NewScanner(app.Analyzer, app.Store, workers, app.Logger)
			results, err := scanner.Scan(ctx, timeframe, days, time.Now())
			if err != nil {
				output.Error("Scan failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(results)
			}

			if len(results) == 0 {
				output.Warning("No symbols in store, import candles first")
				return nil
			}

			table := NewTable(output, "Symbol", "Price", "Bars", "Trend", "Phase", "Recommendation", "Score")
			for _, r := range results {
				if r.Err != nil {
					table.AddRow(r.Symbol, "-", "-", "-", "-", output.Red("error"), "-")
					continue
				}
				if r.Bars == 0 {
					continue
				}
				table.AddRow(
					r.Symbol,
					FormatPrice(r.CurrentPrice),
					fmt.Sprintf("%d", r.Bars),
					string(r.Trend),
					string(r.Phase),
					output.Recommendation(string(r.Recommendation)),
					output.FormatScore(r.RecommendationScore),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("timeframe", "1day", "timeframe of stored candles")
	cmd.Flags().Int("days", 200, "days of stored history to analyze")
	cmd.Flags().Int("workers", 0, "concurrent workers (default from config)")

	return cmd
}
