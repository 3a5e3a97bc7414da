package arima

import (
	"math"

	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

// Forecast projects the fitted model forward horizon periods and derives
// growing-uncertainty confidence intervals from the residual variance.
// Future AR terms feed back previous projections; MA terms only consume
// historical residuals. A naive linear trend estimated from the first and
// last of the most recent max(p, 5) working values is added per step, and
// the forecast variance grows as residualVariance * (1 + 0.1h).
func (e *Estimator) Forecast(model *Model, horizon int) *models.ForecastResult {
	result := &models.ForecastResult{
		Forecast: make([]float64, horizon),
		Lower:    make([]float64, horizon),
		Upper:    make([]float64, horizon),
	}
	if horizon <= 0 || len(model.Working) == 0 {
		return result
	}

	n := len(model.Working)
	p := len(model.ARParams)
	q := len(model.MAParams)

	centered := make([]float64, n, n+horizon)
	for i, v := range model.Working {
		centered[i] = v - model.Mean
	}

	trend := e.recentTrend(model.Working)

	working := make([]float64, horizon)
	stdErrs := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		idx := n + h

		value := 0.0
		for j := 0; j < p; j++ {
			if idx-j-1 >= 0 {
				value += model.ARParams[j] * centered[idx-j-1]
			}
		}
		for j := 0; j < q; j++ {
			rIdx := idx - j - 1 - model.FitStart
			if idx-j-1 < n && rIdx >= 0 && rIdx < len(model.Residuals) {
				value += model.MAParams[j] * model.Residuals[rIdx]
			}
		}

		centered = append(centered, value)
		working[h] = model.Mean + value + trend*float64(h+1)
		stdErrs[h] = math.Sqrt(model.ResidualVariance * (1 + constants.ARIMAVarianceGrowth*float64(h+1)))
	}

	forecast := working
	if e.config.D > 0 {
		forecast = integrate(working, model.Original, e.config.D)
	}

	for h := 0; h < horizon; h++ {
		margin := constants.ZScore95 * stdErrs[h]
		result.Forecast[h] = forecast[h]
		result.Lower[h] = forecast[h] - margin
		result.Upper[h] = forecast[h] + margin
	}

	return result
}

// recentTrend estimates a per-step linear trend from the first and last of
// the most recent max(p, 5) working values.
func (e *Estimator) recentTrend(working []float64) float64 {
	window := e.config.P
	if window < 5 {
		window = 5
	}
	if window > len(working) {
		window = len(working)
	}
	if window < 2 {
		return 0
	}

	n := len(working)
	return (working[n-1] - working[n-window]) / float64(window-1)
}

// integrate reverses d rounds of differencing, anchoring each round on the
// corresponding tail value of the original series.
func integrate(forecast, original []float64, d int) []float64 {
	if d > len(original) {
		d = len(original)
	}

	extended := make([]float64, 0, d+len(forecast))
	extended = append(extended, original[len(original)-d:]...)
	extended = append(extended, forecast...)

	for i := 0; i < d; i++ {
		integrated := make([]float64, len(extended))
		integrated[0] = extended[0]
		for j := 1; j < len(extended); j++ {
			integrated[j] = integrated[j-1] + extended[j]
		}
		extended = integrated
	}

	result := make([]float64, len(forecast))
	copy(result, extended[len(extended)-len(forecast):])
	return result
}
