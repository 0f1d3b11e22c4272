package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concur-run/concur/internal/bench"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two persisted runs of the same scenario",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().Int64("baseline", 0, "run id to use as the baseline (required)")
	compareCmd.Flags().Int64("candidate", 0, "run id to compare against the baseline (required)")
	_ = compareCmd.MarkFlagRequired("baseline")
	_ = compareCmd.MarkFlagRequired("candidate")
}

func runCompare(cmd *cobra.Command, args []string) error {
	baselineID, _ := cmd.Flags().GetInt64("baseline")
	candidateID, _ := cmd.Flags().GetInt64("candidate")

	store, err := bench.Open(dbFilePath())
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	baselineRun, err := store.Load(baselineID)
	if err != nil {
		return fmt.Errorf("load baseline run: %w", err)
	}
	if baselineRun == nil {
		return fmt.Errorf("no run with id %d", baselineID)
	}

	candidateRun, err := store.Load(candidateID)
	if err != nil {
		return fmt.Errorf("load candidate run: %w", err)
	}
	if candidateRun == nil {
		return fmt.Errorf("no run with id %d", candidateID)
	}

	if baselineRun.Scenario != candidateRun.Scenario {
		return fmt.Errorf("cannot compare different scenarios: %q vs %q", baselineRun.Scenario, candidateRun.Scenario)
	}

	c := bench.Compare(baselineRun.Scenario, bench.Aggregate(baselineRun.Durations), bench.Aggregate(candidateRun.Durations))
	fmt.Print(bench.RenderComparisonText(c))
	if c.Regression {
		return fmt.Errorf("regression detected in %q", c.Scenario)
	}
	return nil
}
