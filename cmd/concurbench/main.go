// Command concurbench benchmarks the parallel and promise packages and
// tracks their performance across runs.
package main

import (
	"fmt"
	"os"

	"github.com/concur-run/concur/internal/bench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
