package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// PhaseStats summarizes repeated timings, in seconds, of one phase.
type PhaseStats struct {
	Samples  int     `json:"samples"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	StdDev   float64 `json:"stddev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	CI95     float64 `json:"ci95"`
	Outliers int     `json:"outliers"`
}

// DistributionAnalyzer handles distribution shape analysis of timing samples
type DistributionAnalyzer struct {
	// Confidence is the two-sided level of the mean's confidence interval.
	Confidence float64
}

// NewDistributionAnalyzer creates an analyzer reporting 95% intervals
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{Confidence: 0.95}
}

// Describe computes summary statistics for data. A single sample has zero
// spread and a zero-width interval.
func (da *DistributionAnalyzer) Describe(data []float64) (PhaseStats, error) {
	ps := PhaseStats{Samples: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return ps, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return ps, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return ps, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return ps, err
	}

	ps.Mean, ps.Median, ps.Min, ps.Max = mean, median, min, max
	ps.Q25, ps.Q75 = min, max

	if len(data) < 2 {
		return ps, nil
	}

	stdDev, err := stats.StandardDeviationSample(data)
	if err != nil {
		return ps, err
	}
	ps.StdDev = stdDev
	ps.CI95 = da.halfWidth(stdDev, len(data))

	// Percentile needs a few points before its interpolation is meaningful.
	if len(data) >= 4 {
		if ps.Q25, err = stats.Percentile(data, 25); err != nil {
			return ps, err
		}
		if ps.Q75, err = stats.Percentile(data, 75); err != nil {
			return ps, err
		}
		ps.Outliers = detectOutliers(data, ps.Q25, ps.Q75)
	}

	return ps, nil
}

// halfWidth is the Student-t confidence half-width for the mean.
func (da *DistributionAnalyzer) halfWidth(stdDev float64, n int) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	q := t.Quantile(1 - (1-da.Confidence)/2)
	return q * stdDev / math.Sqrt(float64(n))
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
