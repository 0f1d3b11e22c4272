package bench

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ImportedResult is one benchmark line parsed from `go test -bench`
// output, external to anything the runner drove itself.
type ImportedResult struct {
	Name        string
	Duration    time.Duration
	Iterations  int64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ImportParseError reports a line that looked like a benchmark result
// but could not be parsed.
type ImportParseError struct {
	Line    int
	Message string
	Input   string
}

func (e *ImportParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %q", e.Message, e.Line, e.Input)
	}
	return e.Message
}

var goBenchLine = regexp.MustCompile(
	`^Benchmark(\S+)\s+(\d+)\s+(\d+(?:\.\d+)?)\s+ns/op(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

// ParseGoBenchOutput parses the textual output of `go test -bench`,
// grounded on the teacher's GoParser.Parse, adapted to return flat
// ImportedResults instead of a BenchmarkSuite since concurbench only
// ever imports Go benchmark output.
func ParseGoBenchOutput(output []byte) ([]ImportedResult, error) {
	var results []ImportedResult

	scanner := bufio.NewScanner(bytes.NewReader(output))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "Benchmark") {
			continue
		}

		matches := goBenchLine.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		iterations, err := strconv.ParseInt(matches[2], 10, 64)
		if err != nil {
			return nil, &ImportParseError{Line: lineNum, Message: "parse iterations", Input: line}
		}
		nsPerOp, err := strconv.ParseFloat(matches[3], 64)
		if err != nil || nsPerOp < 0 {
			return nil, &ImportParseError{Line: lineNum, Message: "parse ns/op", Input: line}
		}

		result := ImportedResult{
			Name:       "Benchmark" + matches[1],
			Duration:   time.Duration(nsPerOp * float64(time.Nanosecond)),
			Iterations: iterations,
		}
		if matches[4] != "" {
			if b, err := strconv.ParseInt(matches[4], 10, 64); err == nil {
				result.BytesPerOp = b
			}
		}
		if matches[5] != "" {
			if a, err := strconv.ParseInt(matches[5], 10, 64); err == nil {
				result.AllocsPerOp = a
			}
		}
		results = append(results, result)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bench: read bench output: %w", err)
	}
	if len(results) == 0 {
		return nil, &ImportParseError{Message: "no benchmark results found in output"}
	}
	return results, nil
}

// ImportRun converts one ImportedResult into a Run under the given
// scenario name — a single data point rather than the many iterations
// a Runner produces, since `go test -bench` already amortizes its own
// iteration count internally.
func ImportRun(scenario string, result ImportedResult) *Run {
	return &Run{
		Scenario:   scenario,
		Workers:    0,
		Iterations: 1,
		Durations:  []time.Duration{result.Duration},
	}
}
