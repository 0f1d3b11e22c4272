package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/concur-run/concur/internal/bench"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark scenario and persist the result",
	Long: fmt.Sprintf("Run one of the built-in scenarios (%s) for a configured worker count and iteration count, print its aggregate statistics, and persist the run to the history database.",
		joinScenarios()),
	RunE: runScenario,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("scenario", "", "scenario to run (required)")
	runCmd.Flags().Int("workers", 0, "worker/concurrency count (default 4)")
	runCmd.Flags().Int("iterations", 0, "number of iterations to measure (default 10)")
	runCmd.Flags().Bool("json", false, "print the result as JSON instead of text")
	_ = runCmd.MarkFlagRequired("scenario")

	_ = viper.BindPFlag("workers", runCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("iterations", runCmd.Flags().Lookup("iterations"))
}

func runScenario(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("scenario")
	workers, _ := cmd.Flags().GetInt("workers")
	iterations, _ := cmd.Flags().GetInt("iterations")
	asJSON, _ := cmd.Flags().GetBool("json")

	scenario := bench.Scenario(name)
	if !isKnownScenario(scenario) {
		return fmt.Errorf("unknown scenario %q (available: %s)", name, joinScenarios())
	}

	runner := bench.NewRunner(workers, iterations)
	slog.Info("running scenario", "scenario", scenario, "workers", runner.Workers, "iterations", runner.Iterations)

	run, err := runner.Run(scenario)
	if err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}
	stats := bench.Aggregate(run.Durations)

	store, err := bench.Open(dbFilePath())
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	if err := store.Save(run); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	slog.Info("persisted run", "id", run.ID, "scenario", run.Scenario)

	if asJSON {
		doc, err := bench.RenderJSON(run, stats)
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Println(string(doc))
		return nil
	}
	fmt.Print(bench.RenderText(run, stats))
	return nil
}

func isKnownScenario(s bench.Scenario) bool {
	for _, known := range bench.Scenarios {
		if known == s {
			return true
		}
	}
	return false
}

func joinScenarios() string {
	names := make([]string, len(bench.Scenarios))
	for i, s := range bench.Scenarios {
		names[i] = string(s)
	}
	b, _ := json.Marshal(names)
	return string(b)
}
