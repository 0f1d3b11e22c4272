package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concur-run/concur/internal/bench"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Fit a regression trend over a scenario's saved run history",
	RunE:  runTrend,
}

func init() {
	rootCmd.AddCommand(trendCmd)

	trendCmd.Flags().String("scenario", "", "scenario name (required)")
	trendCmd.Flags().Int("min-points", 3, "minimum number of runs required to fit a trend")
	trendCmd.Flags().Float64("z-threshold", 2.0, "z-score threshold for anomaly detection")
	_ = trendCmd.MarkFlagRequired("scenario")
}

func runTrend(cmd *cobra.Command, args []string) error {
	scenario, _ := cmd.Flags().GetString("scenario")
	minPoints, _ := cmd.Flags().GetInt("min-points")
	zThreshold, _ := cmd.Flags().GetFloat64("z-threshold")

	store, err := bench.Open(dbFilePath())
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	runs, err := store.History(scenario)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	trend, err := bench.CalculateTrend(scenario, runs, minPoints)
	if err != nil {
		return fmt.Errorf("calculate trend: %w", err)
	}

	fmt.Printf("scenario:      %s\n", trend.Scenario)
	fmt.Printf("data points:   %d over %d day(s)\n", trend.DataPoints, trend.PeriodDays)
	fmt.Printf("direction:     %s\n", trend.Direction)
	fmt.Printf("slope:         %.2f ns/day\n", trend.SlopeNsPerDay)
	fmt.Printf("r-squared:     %.3f\n", trend.RSquared)
	fmt.Printf("change:        %.2f%%\n", trend.ChangePercent)

	anomalies := bench.DetectAnomalies(runs, zThreshold)
	if len(anomalies) == 0 {
		fmt.Println("anomalies:     none")
		return nil
	}
	fmt.Printf("anomalies:     %d\n", len(anomalies))
	for _, a := range anomalies {
		fmt.Printf("  run %d at %s: mean=%.0fns z=%.2f severity=%s\n",
			a.RunID, a.Timestamp.Format("2006-01-02T15:04:05"), a.MeanNs, a.ZScore, a.Severity)
	}
	return nil
}
