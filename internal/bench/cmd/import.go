package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/concur-run/concur/internal/bench"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import `go test -bench` output as run history",
	Long: `Import reads the textual output of "go test -bench" (from a file, or
stdin if no file is given) and stores each benchmark line as a single-point
run, named after the benchmark as printed (e.g. BenchmarkAll-8), so external benchmarks can be
tracked and compared alongside concurbench's own scenarios.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	var (
		input io.Reader = os.Stdin
		err   error
	)
	if len(args) == 1 {
		f, openErr := os.Open(args[0])
		if openErr != nil {
			return fmt.Errorf("open input: %w", openErr)
		}
		defer f.Close()
		input = f
	}

	raw, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	results, err := bench.ParseGoBenchOutput(raw)
	if err != nil {
		return fmt.Errorf("parse bench output: %w", err)
	}

	store, err := bench.Open(dbFilePath())
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	for _, result := range results {
		run := bench.ImportRun(result.Name, result)
		if err := store.Save(run); err != nil {
			return fmt.Errorf("save imported run %q: %w", result.Name, err)
		}
		fmt.Printf("imported %-40s %v (id=%d)\n", result.Name, result.Duration, run.ID)
	}
	return nil
}
