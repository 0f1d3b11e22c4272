package bench

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RenderText renders a Run's aggregate statistics as a human-readable
// report, grounded on the teacher's stderr summary formatting in its run
// command.
func RenderText(run *Run, stats Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario:   %s\n", run.Scenario)
	fmt.Fprintf(&b, "workers:    %d\n", run.Workers)
	fmt.Fprintf(&b, "iterations: %d\n", run.Iterations)
	fmt.Fprintf(&b, "mean:       %v\n", stats.Mean.Round(time.Microsecond))
	fmt.Fprintf(&b, "median:     %v\n", stats.Median.Round(time.Microsecond))
	fmt.Fprintf(&b, "min:        %v\n", stats.Min.Round(time.Microsecond))
	fmt.Fprintf(&b, "max:        %v\n", stats.Max.Round(time.Microsecond))
	fmt.Fprintf(&b, "p95:        %v\n", stats.P95.Round(time.Microsecond))
	fmt.Fprintf(&b, "p99:        %v\n", stats.P99.Round(time.Microsecond))
	fmt.Fprintf(&b, "stddev:     %v\n", stats.StdDev.Round(time.Microsecond))
	return b.String()
}

// RenderJSON renders a Run and its Stats as an indented JSON document.
func RenderJSON(run *Run, stats Stats) ([]byte, error) {
	doc := struct {
		Run   *Run  `json:"run"`
		Stats Stats `json:"stats"`
	}{Run: run, Stats: stats}
	return json.MarshalIndent(doc, "", "  ")
}

// RenderComparisonText renders a Comparison as a human-readable report.
func RenderComparisonText(c Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", c.Scenario)
	fmt.Fprintf(&b, "baseline mean:  %v\n", c.Baseline.Mean.Round(time.Microsecond))
	fmt.Fprintf(&b, "candidate mean: %v\n", c.Candidate.Mean.Round(time.Microsecond))
	fmt.Fprintf(&b, "delta:          %.2f%%\n", c.DeltaPercent)
	switch {
	case c.Regression:
		b.WriteString("verdict:        regression\n")
	case c.Improvement:
		b.WriteString("verdict:        improvement\n")
	default:
		b.WriteString("verdict:        unchanged\n")
	}
	return b.String()
}
