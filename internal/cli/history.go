package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"marketlens/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol>",
		Short: "Show stored analysis reports for a symbol",
		Example: `  marketlens history AAPL
  marketlens history MSFT --limit 5 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			limit, _ := cmd.Flags().GetInt("limit")

			if app.Store == nil {
				output.Error("Store unavailable")
				return fmt.Errorf("store unavailable")
			}

			reports, err := app.Store.GetReports(ctx, store.ReportFilter{Symbol: symbol, Limit: limit})
			if err != nil {
				output.Error("Failed to load reports: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(reports)
			}

			if len(reports) == 0 {
				output.Warning("No stored reports for %s", symbol)
				return nil
			}

			dateFormat := app.Config.UI.DateFormat
			if dateFormat == "" {
				dateFormat = "2006-01-02"
			}

			output.Bold("Analysis history: %s", symbol)
			table := NewTable(output, "Date", "Price", "Trend", "Wyckoff Phase", "Recommendation", "Score")
			for _, r := range reports {
				table.AddRow(
					r.GeneratedAt.Format(dateFormat),
					FormatPrice(r.CurrentPrice),
					string(r.Trend.Trend),
					string(r.Wyckoff.Phase),
					output.Recommendation(string(r.Recommendation)),
					output.FormatScore(r.RecommendationScore),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int("limit", 10, "maximum number of reports to show")

	return cmd
}
