package bench

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Trend describes the linear-regression trend of a scenario's mean
// latency across its saved run history. Grounded on the teacher's
// BasicTrendAnalyzer.CalculateTrend, adapted to regress directly over
// Run/Stats rather than a separate historical-comparison record.
type Trend struct {
	Scenario      string
	Direction     string // "improving", "degrading", "stable"
	SlopeNsPerDay float64
	RSquared      float64
	ChangePercent float64
	PeriodDays    int
	DataPoints    int
	StartTime     time.Time
	EndTime       time.Time
	StartMeanNs   float64
	EndMeanNs     float64
}

// CalculateTrend fits a linear regression of each run's aggregate mean
// latency against its age in days. runs must be ordered oldest first
// (Storage.History already returns them that way) and contain at least
// minDataPoints entries.
func CalculateTrend(scenario string, runs []*Run, minDataPoints int) (*Trend, error) {
	if len(runs) < minDataPoints {
		return nil, fmt.Errorf("bench: insufficient data points: %d < %d", len(runs), minDataPoints)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("bench: no run history for %q", scenario)
	}

	n := float64(len(runs))
	var sumX, sumY, sumXY, sumX2 float64
	startTime := runs[0].Timestamp

	means := make([]float64, len(runs))
	for i, run := range runs {
		x := runs[i].Timestamp.Sub(startTime).Hours() / 24
		y := float64(Aggregate(run.Durations).Mean)
		means[i] = y
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if math.Abs(denominator) < 1e-10 {
		return nil, fmt.Errorf("bench: cannot fit trend: no variance across run timestamps")
	}

	slope := (n*sumXY - sumX*sumY) / denominator
	intercept := (sumY - slope*sumX) / n

	ssRes, ssTot := 0.0, 0.0
	meanY := sumY / n
	for i, run := range runs {
		x := run.Timestamp.Sub(startTime).Hours() / 24
		predicted := intercept + slope*x
		ssRes += math.Pow(means[i]-predicted, 2)
		ssTot += math.Pow(means[i]-meanY, 2)
	}
	rSquared := 1.0
	if ssTot > 0 {
		rSquared = 1.0 - ssRes/ssTot
	}
	rSquared = math.Max(0, math.Min(1, rSquared))

	direction := "stable"
	if math.Abs(slope) > 1.0 {
		if slope > 0 {
			direction = "degrading"
		} else {
			direction = "improving"
		}
	}

	endTime := runs[len(runs)-1].Timestamp
	periodDays := int(endTime.Sub(startTime).Hours() / 24)
	if periodDays == 0 {
		periodDays = 1
	}

	startValue, endValue := means[0], means[len(means)-1]
	changePercent := 0.0
	if startValue > 0 {
		changePercent = (endValue - startValue) / startValue * 100
	}

	return &Trend{
		Scenario:      scenario,
		Direction:     direction,
		SlopeNsPerDay: slope,
		RSquared:      rSquared,
		ChangePercent: changePercent,
		PeriodDays:    periodDays,
		DataPoints:    len(runs),
		StartTime:     startTime,
		EndTime:       endTime,
		StartMeanNs:   startValue,
		EndMeanNs:     endValue,
	}, nil
}

// Anomaly flags a run whose mean latency deviates from the scenario's
// historical mean by more than zScoreThreshold standard deviations.
type Anomaly struct {
	RunID     int64
	Timestamp time.Time
	MeanNs    float64
	ZScore    float64
	Severity  string // "low", "medium", "high", "critical"
}

// DetectAnomalies scans a scenario's run history for statistical
// outliers in mean latency. Grounded on the teacher's
// BasicTrendAnalyzer.DetectAnomalies.
func DetectAnomalies(runs []*Run, zScoreThreshold float64) []Anomaly {
	if len(runs) < 2 {
		return nil
	}

	values := make([]float64, len(runs))
	var sum float64
	for i, run := range runs {
		values[i] = float64(Aggregate(run.Durations).Mean)
		sum += values[i]
	}
	mean := sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	stdDev := math.Sqrt(sumSq / float64(len(values)-1))
	if stdDev == 0 {
		return nil
	}

	var anomalies []Anomaly
	for i, run := range runs {
		zScore := (values[i] - mean) / stdDev
		if math.Abs(zScore) <= zScoreThreshold {
			continue
		}
		severity := "low"
		switch abs := math.Abs(zScore); {
		case abs > 3.0:
			severity = "critical"
		case abs > 2.5:
			severity = "high"
		case abs > 1.5:
			severity = "medium"
		}
		anomalies = append(anomalies, Anomaly{
			RunID:     run.ID,
			Timestamp: run.Timestamp,
			MeanNs:    values[i],
			ZScore:    zScore,
			Severity:  severity,
		})
	}

	sort.Slice(anomalies, func(i, j int) bool { return anomalies[i].Timestamp.Before(anomalies[j].Timestamp) })
	return anomalies
}
