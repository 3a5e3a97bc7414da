// Package arima implements the approximate ARIMA estimator: Yule-Walker
// style AR coefficients from the autocorrelation function, dampened MA
// coefficients from the residual ACF, fitted-value reconstruction, and
// residual diagnostics.
package arima

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/trendlens/tsforecast/internal/forecast/stats"
	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

// Estimator fits ARIMA(p,d,q) models. It holds no per-series state; every
// Fit call is independent, so one Estimator may serve concurrent analyses.
type Estimator struct {
	logger *logrus.Logger
	config *models.ARIMAConfig
}

// NewEstimator creates an ARIMA estimator for the given orders.
func NewEstimator(config *models.ARIMAConfig, logger *logrus.Logger) *Estimator {
	if config == nil {
		config = &models.ARIMAConfig{P: 1, D: 0, Q: 1}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Estimator{logger: logger, config: config}
}

// Model holds the fitted state for one series. All slices on the
// differenced (working) scale.
type Model struct {
	Config   *models.ARIMAConfig `json:"config"`
	ARParams []float64           `json:"ar_params"`
	MAParams []float64           `json:"ma_params"`

	// Original is the cleaned input series; Working is Original after d
	// rounds of differencing, the scale on which the model operates.
	Original []float64 `json:"original"`
	Working  []float64 `json:"working"`
	Mean     float64   `json:"mean"`

	// FitStart is the first working-scale index with enough history for a
	// fitted value: max(p, q).
	FitStart         int       `json:"fit_start"`
	Fitted           []float64 `json:"fitted"`
	Residuals        []float64 `json:"residuals"`
	ResidualVariance float64   `json:"residual_variance"`
	Stationary       bool      `json:"stationary"`
}

// Fit runs the estimation pipeline: difference, estimate AR, compute AR
// residuals, estimate MA, reconstruct fitted values. Empty input yields an
// all-zero model rather than an error; the engine guards the empty case
// before dispatching here.
func (e *Estimator) Fit(series []float64) *Model {
	model := &Model{
		Config:   e.config,
		ARParams: make([]float64, 0, e.config.P),
		MAParams: make([]float64, 0, e.config.Q),
		Original: series,
	}
	if len(series) == 0 {
		model.Working = []float64{}
		model.Fitted = []float64{}
		model.Residuals = []float64{}
		return model
	}

	model.Stationary = stats.CheckStationarity(series)
	model.Working = stats.Difference(series, e.config.D)
	if len(model.Working) == 0 {
		model.Fitted = []float64{}
		model.Residuals = []float64{}
		return model
	}
	model.Mean = stat.Mean(model.Working, nil)

	centered := make([]float64, len(model.Working))
	for i, v := range model.Working {
		centered[i] = v - model.Mean
	}

	model.ARParams = e.estimateAR(centered)
	arResiduals := e.computeARResiduals(centered, model.ARParams)
	model.MAParams = e.estimateMA(arResiduals)

	e.reconstructFitted(model, centered, arResiduals)

	e.logger.WithFields(logrus.Fields{
		"order":             [3]int{e.config.P, e.config.D, e.config.Q},
		"observations":      len(series),
		"ar_params":         model.ARParams,
		"ma_params":         model.MAParams,
		"residual_variance": model.ResidualVariance,
	}).Debug("Fitted ARIMA model")

	return model
}

// estimateAR derives AR coefficients from the ACF of the centered working
// series. The lag-1 coefficient is acf[1]/acf[0]; higher lags carry a fixed
// 0.8 dampening instead of a full Yule-Walker solve. The dampening is an
// empirical approximation and must not be replaced by a matrix inversion:
// every downstream metric was tuned against it.
func (e *Estimator) estimateAR(centered []float64) []float64 {
	p := e.config.P
	if p == 0 {
		return []float64{}
	}

	acf := stats.Autocorrelation(centered, p)
	params := make([]float64, p)
	if len(acf) == 0 || acf[0] == 0 {
		return params
	}

	for j := 0; j < p; j++ {
		if j+1 >= len(acf) {
			break
		}
		ratio := acf[j+1] / acf[0]
		if j == 0 {
			params[j] = ratio
		} else {
			params[j] = constants.ARDampening * ratio
		}
	}

	return params
}

// computeARResiduals returns the one-step AR residuals for t in [p, n).
func (e *Estimator) computeARResiduals(centered []float64, arParams []float64) []float64 {
	p := len(arParams)
	if len(centered) <= p {
		return []float64{}
	}

	residuals := make([]float64, 0, len(centered)-p)
	for t := p; t < len(centered); t++ {
		prediction := 0.0
		for j := 0; j < p; j++ {
			prediction += arParams[j] * centered[t-j-1]
		}
		residuals = append(residuals, centered[t]-prediction)
	}

	return residuals
}

// estimateMA derives MA coefficients from the ACF of the AR residuals, each
// scaled by the 0.7 dampening factor.
func (e *Estimator) estimateMA(arResiduals []float64) []float64 {
	q := e.config.Q
	if q == 0 {
		return []float64{}
	}

	params := make([]float64, q)
	if len(arResiduals) == 0 {
		return params
	}

	acf := stats.Autocorrelation(arResiduals, q)
	for j := 0; j < q && j+1 < len(acf); j++ {
		params[j] = constants.MADampening * acf[j+1]
	}

	return params
}

// reconstructFitted rebuilds fitted values from the AR and MA components
// starting at max(p, q) and records the final residuals and their variance.
// arResiduals is offset by p relative to the centered series.
func (e *Estimator) reconstructFitted(model *Model, centered, arResiduals []float64) {
	p := len(model.ARParams)
	q := len(model.MAParams)
	start := p
	if q > start {
		start = q
	}
	model.FitStart = start

	if len(centered) <= start {
		model.Fitted = []float64{}
		model.Residuals = []float64{}
		return
	}

	fitted := make([]float64, 0, len(centered)-start)
	residuals := make([]float64, 0, len(centered)-start)
	for t := start; t < len(centered); t++ {
		value := 0.0
		for j := 0; j < p; j++ {
			value += model.ARParams[j] * centered[t-j-1]
		}
		for j := 0; j < q; j++ {
			idx := t - j - 1 - p
			if idx >= 0 && idx < len(arResiduals) {
				value += model.MAParams[j] * arResiduals[idx]
			}
		}
		fitted = append(fitted, model.Mean+value)
		residuals = append(residuals, model.Working[t]-(model.Mean+value))
	}

	model.Fitted = fitted
	model.Residuals = residuals
	model.ResidualVariance = stats.MSE(residuals)
}

// Diagnose reports the stationarity flag, the residual ACF, and the
// Ljung-Box statistic for the fitted model.
func (e *Estimator) Diagnose(model *Model) *models.ARIMADiagnostics {
	maxLag := constants.LjungBoxLags
	if len(model.Residuals) > 0 && maxLag > len(model.Residuals)-1 {
		maxLag = len(model.Residuals) - 1
	}

	return &models.ARIMADiagnostics{
		Stationary:  model.Stationary,
		ResidualACF: stats.Autocorrelation(model.Residuals, maxLag),
		LjungBox:    stats.LjungBox(model.Residuals),
	}
}

// Metrics computes the goodness-of-fit block over the fitted window with
// parameter count k = p + q.
func (e *Estimator) Metrics(model *Model) *models.ForecastMetrics {
	if len(model.Fitted) == 0 {
		return &models.ForecastMetrics{}
	}
	actual := model.Working[model.FitStart:]
	return stats.Calculate(actual, model.Fitted, e.config.P+e.config.Q)
}
