package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/concur-run/concur/internal/bench"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a previously persisted run",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Int64("id", 0, "run id to report (mutually exclusive with --latest)")
	reportCmd.Flags().String("latest", "", "report the most recent run for this scenario instead of an id")
	reportCmd.Flags().Bool("json", false, "print the result as JSON instead of text")
}

func runReport(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetInt64("id")
	latest, _ := cmd.Flags().GetString("latest")
	asJSON, _ := cmd.Flags().GetBool("json")

	if id == 0 && latest == "" {
		return fmt.Errorf("one of --id or --latest is required")
	}
	if id != 0 && latest != "" {
		return fmt.Errorf("--id and --latest are mutually exclusive")
	}

	store, err := bench.Open(dbFilePath())
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	var run *bench.Run
	if latest != "" {
		run, err = store.Latest(latest)
	} else {
		run, err = store.Load(id)
	}
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no matching run found")
	}

	stats := bench.Aggregate(run.Durations)
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
