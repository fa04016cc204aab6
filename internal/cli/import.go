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
	"marketlens/pkg/candles"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <symbol> <file>",
		Short: "Import a candle series into the local store",
		Long: `Import candles from a JSON file into the local store.

The file must contain a JSON array of candles:
  [{"date":"2025-01-02T00:00:00Z","open":100,"high":101,"low":99,"close":100.5,"volume":12000}, ...]`,
		Example: `  marketlens import AAPL aapl_daily.json
  marketlens import MSFT msft.json --timeframe 1hour`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			file := args[1]
			timeframe, _ := cmd.Flags().GetString("timeframe")

			if app.Store == nil {
				output.Error("Store unavailable")
				return fmt.Errorf("store unavailable")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				output.Error("Failed to read %s: %v", file, err)
				return err
			}

			var series []models.Candle
			if err := json.Unmarshal(data, &series); err != nil {
				output.Error("Invalid candle file: %v", err)
				return err
			}
			if len(series) == 0 {
				output.Warning("No candles in %s", file)
				return nil
			}

			candles.Sort(series)
			series = candles.Dedupe(series)
			if err := candles.Validate(series); err != nil {
				output.Error("Invalid candle series: %v", err)
				return err
			}

			if err := app.Store.SaveCandles(ctx, symbol, timeframe, series); err != nil {
				output.Error("Failed to save candles: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":    symbol,
					"timeframe": timeframe,
					"imported":  len(series),
				})
			}
			output.Success("Imported %d candles for %s (%s)", len(series), symbol, timeframe)
			return nil
		},
	}

	cmd.Flags().String("timeframe", "1day", "timeframe of the imported candles")

	return cmd
}
