package smoothing

import (
	"math"

	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

// Forecast projects the fitted model forward horizon periods. The trend
// component is compounded with damping (sum of phi^(j-1) for j=1..h), the
// cyclic seasonal factor is reapplied at phase (n-1+h) mod m, and the
// interval half-width is z * sqrt(residualVariance * (1 + sqrt(h)/10)).
func (e *Estimator) Forecast(model *Model, horizon int) *models.ForecastResult {
	result := &models.ForecastResult{
		Forecast: make([]float64, horizon),
		Lower:    make([]float64, horizon),
		Upper:    make([]float64, horizon),
	}
	n := len(model.Data)
	if horizon <= 0 || n == 0 {
		return result
	}

	level := model.Level[n-1]
	trend := 0.0
	if model.Trend != nil {
		trend = model.Trend[n-1]
	}

	trendSum := 0.0
	phiPower := 1.0
	for h := 1; h <= horizon; h++ {
		trendSum += phiPower
		phiPower *= model.Phi

		point := level + trend*trendSum
		if model.Class == constants.SmoothingTriple && len(model.Seasonal) > 0 {
			sIdx := (n - 1 + h) % model.SeasonalPeriod
			if model.SeasonalType == constants.SeasonalMultiplicative {
				point *= model.Seasonal[sIdx]
			} else {
				point += model.Seasonal[sIdx]
			}
		}

		margin := constants.ZScore95 * math.Sqrt(model.ResidualVariance*(1+math.Sqrt(float64(h))/10))
		result.Forecast[h-1] = point
		result.Lower[h-1] = point - margin
		result.Upper[h-1] = point + margin
	}

	return result
}
