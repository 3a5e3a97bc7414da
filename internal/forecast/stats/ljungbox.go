package stats

import (
	"math"

	"github.com/trendlens/tsforecast/pkg/constants"
)

// LjungBox computes the Ljung-Box Q statistic over the first 10 residual
// autocorrelation lags: n(n+2) * sum(acf[k]^2 / (n-k)). Lags where n-k <= 0
// or the ACF value is not finite are skipped, so degenerate residual sets
// yield 0 instead of NaN.
func LjungBox(residuals []float64) float64 {
	n := len(residuals)
	if n == 0 {
		return 0
	}

	acf := Autocorrelation(residuals, constants.LjungBoxLags)

	var sum float64
	for k := 1; k <= constants.LjungBoxLags && k < len(acf); k++ {
		if n-k <= 0 {
			continue
		}
		if math.IsNaN(acf[k]) || math.IsInf(acf[k], 0) {
			continue
		}
		sum += acf[k] * acf[k] / float64(n-k)
	}

	return float64(n) * float64(n+2) * sum
}
