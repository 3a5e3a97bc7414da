// Package stats provides the series preprocessing and goodness-of-fit
// primitives shared by both estimators. Every function is pure and safe for
// concurrent use.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/trendlens/tsforecast/pkg/constants"
)

// Clean filters out NaN and infinite values. Missing observations are
// dropped, never interpolated; downstream stages treat an empty result as
// an insufficient-data condition.
func Clean(values []float64) []float64 {
	cleaned := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		cleaned = append(cleaned, v)
	}
	return cleaned
}

// Difference applies first differencing the given number of times. Each
// pass shrinks the series by one; order 0 returns an identity copy.
func Difference(values []float64, order int) []float64 {
	result := make([]float64, len(values))
	copy(result, values)

	for i := 0; i < order; i++ {
		if len(result) < 2 {
			return []float64{}
		}
		diff := make([]float64, len(result)-1)
		for j := 1; j < len(result); j++ {
			diff[j-1] = result[j] - result[j-1]
		}
		result = diff
	}

	return result
}

// Autocorrelation returns the ACF at lags 0..min(maxLag, n-1) using the
// biased sample autocovariance over variance estimator. A zero-variance
// series yields all zeros rather than dividing by zero; otherwise lag 0 is
// 1 by construction.
func Autocorrelation(values []float64, maxLag int) []float64 {
	n := len(values)
	if n == 0 || maxLag < 0 {
		return []float64{}
	}
	if maxLag > n-1 {
		maxLag = n - 1
	}

	mean := stat.Mean(values, nil)

	var c0 float64
	for _, v := range values {
		c0 += (v - mean) * (v - mean)
	}
	c0 /= float64(n)

	acf := make([]float64, maxLag+1)
	if c0 == 0 {
		return acf
	}

	acf[0] = 1.0
	for k := 1; k <= maxLag; k++ {
		var ck float64
		for i := k; i < n; i++ {
			ck += (values[i] - mean) * (values[i-k] - mean)
		}
		ck /= float64(n)
		acf[k] = ck / c0
	}

	return acf
}

// CheckStationarity runs a simplified unit-root check: the t-statistic of
// the mean first difference over its standard error, compared against 1.96.
// Series shorter than 10 observations are reported stationary by convention
// (insufficient evidence to reject).
func CheckStationarity(values []float64) bool {
	n := len(values)
	if n < constants.MinStationarityObs {
		return true
	}

	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = values[i] - values[i-1]
	}

	mean := stat.Mean(diffs, nil)
	variance := stat.Variance(diffs, nil)
	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		// A constant drift with no noise; stationary only when the drift
		// itself is zero.
		return mean == 0
	}

	stdErr := stdDev / math.Sqrt(float64(len(diffs)))
	tStat := mean / stdErr

	return math.Abs(tStat) < constants.StationarityTStat
}
