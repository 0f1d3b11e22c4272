package bench

import "math"

// defaultThresholdPercent marks a delta as noise below this magnitude,
// the same role the teacher's comparator threshold parameter played.
const defaultThresholdPercent = 5.0

// Compare reduces a baseline and candidate Stats to a Comparison,
// grounded on the teacher's compareResults: delta on the mean, sign
// determines regression vs improvement, magnitude below threshold is
// unchanged.
func Compare(scenario string, baseline, candidate Stats) Comparison {
	return CompareWithThreshold(scenario, baseline, candidate, defaultThresholdPercent)
}

// CompareWithThreshold is Compare with an explicit noise threshold.
func CompareWithThreshold(scenario string, baseline, candidate Stats, thresholdPercent float64) Comparison {
	c := Comparison{Scenario: scenario, Baseline: baseline, Candidate: candidate}

	if baseline.Mean > 0 {
		delta := candidate.Mean - baseline.Mean
		c.DeltaPercent = (float64(delta) / float64(baseline.Mean)) * 100.0
	}

	abs := math.Abs(c.DeltaPercent)
	if abs > thresholdPercent {
		if c.DeltaPercent > 0 {
			c.Regression = true
		} else {
			c.Improvement = true
		}
	}
	return c
}
