package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

// Residuals returns actual minus fitted over their common length.
func Residuals(actual, fitted []float64) []float64 {
	n := len(actual)
	if len(fitted) < n {
		n = len(fitted)
	}
	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = actual[i] - fitted[i]
	}
	return residuals
}

// MSE returns the mean squared residual, 0 for an empty residual set.
func MSE(residuals []float64) float64 {
	if len(residuals) == 0 {
		return 0
	}
	var sum float64
	for _, r := range residuals {
		sum += r * r
	}
	return sum / float64(len(residuals))
}

// AIC computes the Akaike information criterion from a Gaussian
// log-likelihood approximation over the residual MSE. Degenerate inputs
// (no residuals, MSE <= 0) yield 0 rather than -Inf or NaN.
func AIC(mse float64, n, k int) float64 {
	if n <= 0 || mse <= 0 {
		return 0
	}
	return float64(n)*math.Log(mse) + 2*float64(k)
}

// BIC computes the Bayesian information criterion with the same guards as
// AIC.
func BIC(mse float64, n, k int) float64 {
	if n <= 0 || mse <= 0 {
		return 0
	}
	return float64(n)*math.Log(mse) + float64(k)*math.Log(float64(n))
}

// Calculate computes the full goodness-of-fit block from aligned actual and
// fitted slices. k is the model's parameter count for the information
// criteria. MAPE excludes points where |actual| <= 0.001 from both
// numerator and denominator so a zero observation never inflates the
// metric to infinity.
func Calculate(actual, fitted []float64, k int) *models.ForecastMetrics {
	residuals := Residuals(actual, fitted)
	n := len(residuals)
	if n == 0 {
		return &models.ForecastMetrics{}
	}

	var mae, mapeSum float64
	mapeCount := 0
	for i, r := range residuals {
		abs := math.Abs(r)
		mae += abs
		if math.Abs(actual[i]) > constants.MAPEExclusionBound {
			mapeSum += abs / math.Abs(actual[i])
			mapeCount++
		}
	}
	mae /= float64(n)

	mape := 0.0
	if mapeCount > 0 {
		mape = mapeSum / float64(mapeCount) * 100
	}

	mse := MSE(residuals)

	actualMean := stat.Mean(actual[:n], nil)
	var ssRes, ssTot float64
	for i, r := range residuals {
		ssRes += r * r
		d := actual[i] - actualMean
		ssTot += d * d
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return &models.ForecastMetrics{
		AIC:  AIC(mse, n, k),
		BIC:  BIC(mse, n, k),
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAE:  mae,
		MAPE: mape,
		R2:   r2,
	}
}
