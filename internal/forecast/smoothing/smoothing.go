// Package smoothing implements simple, double (Holt), and triple
// (Holt-Winters) exponential smoothing with optional trend damping,
// additive or multiplicative seasonality, and grid-search parameter
// optimization.
package smoothing

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/trendlens/tsforecast/internal/forecast/stats"
	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

// Estimator fits exponential smoothing models. Stateless across calls;
// safe for concurrent use on independent inputs.
type Estimator struct {
	logger *logrus.Logger
	config *models.SmoothingConfig
}

// NewEstimator creates a smoothing estimator. Unset config fields are
// defaulted (seasonal period 12, additive seasonality).
func NewEstimator(config *models.SmoothingConfig, logger *logrus.Logger) *Estimator {
	if config == nil {
		config = &models.SmoothingConfig{
			ModelClass: constants.SmoothingSimple,
			Alpha:      0.3,
		}
	}
	if logger == nil {
		logger = logrus.New()
	}
	config.ApplyDefaults()
	return &Estimator{logger: logger, config: config}
}

// Model holds the fitted state for one series. Level and Trend carry one
// value per time step; Seasonal holds the final cyclic factors, one per
// seasonal phase.
type Model struct {
	Class string  `json:"class"`
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta,omitempty"`
	Gamma float64 `json:"gamma,omitempty"`
	Phi   float64 `json:"phi"`

	Data     []float64 `json:"data"`
	Level    []float64 `json:"level"`
	Trend    []float64 `json:"trend,omitempty"`
	Seasonal []float64 `json:"seasonal,omitempty"`

	SeasonalType   string `json:"seasonal_type,omitempty"`
	SeasonalPeriod int    `json:"seasonal_period,omitempty"`

	Fitted           []float64 `json:"fitted"`
	Residuals        []float64 `json:"residuals"`
	ResidualVariance float64   `json:"residual_variance"`

	// ParamCount is k for the information criteria: alpha, plus beta for
	// trended classes, plus gamma and the initial seasonal states for
	// triple, plus phi when damping is enabled.
	ParamCount int `json:"param_count"`
}

// Fit smooths the series with the configured parameters, running the grid
// search first when auto-optimization is requested. Empty input yields an
// all-empty model; the engine guards that case before dispatching here.
func (e *Estimator) Fit(series []float64) (*Model, *models.OptimizedParams) {
	if len(series) == 0 {
		return &Model{
			Class:  e.config.ModelClass,
			Phi:    e.config.Phi(),
			Data:   []float64{},
			Level:  []float64{},
			Fitted: []float64{},
		}, nil
	}

	params := parameters{
		alpha: e.config.Alpha,
		beta:  e.config.Beta,
		gamma: e.config.Gamma,
		phi:   e.config.Phi(),
	}

	var optimized *models.OptimizedParams
	if e.config.AutoOptimize {
		params, optimized = e.optimize(series)
	}

	model := e.fitWithParams(series, params)

	e.logger.WithFields(logrus.Fields{
		"class":         model.Class,
		"alpha":         model.Alpha,
		"beta":          model.Beta,
		"gamma":         model.Gamma,
		"phi":           model.Phi,
		"observations":  len(series),
		"auto_optimize": e.config.AutoOptimize,
	}).Debug("Fitted exponential smoothing model")

	return model, optimized
}

// parameters is one point in the smoothing parameter space.
type parameters struct {
	alpha, beta, gamma, phi float64
}

// fitWithParams runs the smoothing recursion for one parameter combination.
func (e *Estimator) fitWithParams(series []float64, p parameters) *Model {
	n := len(series)
	cfg := e.config

	model := &Model{
		Class:          cfg.ModelClass,
		Alpha:          p.alpha,
		Beta:           p.beta,
		Gamma:          p.gamma,
		Phi:            p.phi,
		Data:           series,
		SeasonalType:   cfg.SeasonalType,
		SeasonalPeriod: cfg.SeasonalPeriod,
		ParamCount:     e.paramCount(),
	}

	level := make([]float64, n)
	level[0] = initialLevel(series, cfg.SeasonalPeriod)

	var trend []float64
	if cfg.ModelClass != constants.SmoothingSimple {
		trend = make([]float64, n)
		trend[0] = initialTrend(series, cfg.SeasonalPeriod)
	}

	var seasonal []float64
	if cfg.ModelClass == constants.SmoothingTriple {
		seasonal = initialSeasonal(series, cfg.SeasonalPeriod, cfg.SeasonalType)
	}

	fitted := make([]float64, n)
	fitted[0] = e.oneStepAhead(level[0], trendAt(trend, 0, p.phi), seasonal, 0)

	for t := 1; t < n; t++ {
		switch cfg.ModelClass {
		case constants.SmoothingSimple:
			fitted[t] = level[t-1]
			level[t] = p.alpha*series[t] + (1-p.alpha)*level[t-1]

		case constants.SmoothingDouble:
			dampedTrend := trend[t-1] * p.phi
			fitted[t] = level[t-1] + dampedTrend
			level[t] = p.alpha*series[t] + (1-p.alpha)*(level[t-1]+dampedTrend)
			trend[t] = p.beta*(level[t]-level[t-1]) + (1-p.beta)*dampedTrend

		case constants.SmoothingTriple:
			m := cfg.SeasonalPeriod
			sIdx := t % m
			sPrev := seasonal[sIdx]
			dampedTrend := trend[t-1] * p.phi

			if cfg.SeasonalType == constants.SeasonalMultiplicative {
				divisor := math.Max(sPrev, constants.SeasonalDivisorMin)
				fitted[t] = (level[t-1] + dampedTrend) * sPrev
				level[t] = p.alpha*(series[t]/divisor) + (1-p.alpha)*(level[t-1]+dampedTrend)
				trend[t] = p.beta*(level[t]-level[t-1]) + (1-p.beta)*dampedTrend
				levelDivisor := math.Max(level[t], constants.SeasonalDivisorMin)
				seasonal[sIdx] = p.gamma*(series[t]/levelDivisor) + (1-p.gamma)*sPrev
			} else {
				fitted[t] = level[t-1] + dampedTrend + sPrev
				level[t] = p.alpha*(series[t]-sPrev) + (1-p.alpha)*(level[t-1]+dampedTrend)
				trend[t] = p.beta*(level[t]-level[t-1]) + (1-p.beta)*dampedTrend
				seasonal[sIdx] = p.gamma*(series[t]-level[t]) + (1-p.gamma)*sPrev
			}
		}
	}

	model.Level = level
	model.Trend = trend
	model.Seasonal = seasonal
	model.Fitted = fitted
	model.Residuals = stats.Residuals(series, fitted)
	model.ResidualVariance = stats.MSE(model.Residuals)

	return model
}

// oneStepAhead is the prediction of the first observation from the initial
// states.
func (e *Estimator) oneStepAhead(level, dampedTrend float64, seasonal []float64, sIdx int) float64 {
	prediction := level
	if e.config.ModelClass != constants.SmoothingSimple {
		prediction += dampedTrend
	}
	if e.config.ModelClass == constants.SmoothingTriple && len(seasonal) > 0 {
		if e.config.SeasonalType == constants.SeasonalMultiplicative {
			prediction *= seasonal[sIdx]
		} else {
			prediction += seasonal[sIdx]
		}
	}
	return prediction
}

func trendAt(trend []float64, t int, phi float64) float64 {
	if trend == nil {
		return 0
	}
	return trend[t] * phi
}

// paramCount is k for AIC/BIC: alpha, plus beta unless simple, plus gamma
// and the seasonal initial states for triple, plus phi when damping.
func (e *Estimator) paramCount() int {
	k := 1
	if e.config.ModelClass != constants.SmoothingSimple {
		k++
	}
	if e.config.ModelClass == constants.SmoothingTriple {
		k++
		k += e.config.SeasonalPeriod
	}
	if e.config.Damping != nil && e.config.Damping.Enabled {
		k++
	}
	return k
}

// initialLevel is the mean of the first min(seasonalPeriod, n/2) points.
func initialLevel(series []float64, seasonalPeriod int) float64 {
	window := initWindow(series, seasonalPeriod)
	return stat.Mean(series[:window], nil)
}

// initialTrend is the OLS slope of the initialization window against its
// index.
func initialTrend(series []float64, seasonalPeriod int) float64 {
	window := initWindow(series, seasonalPeriod)
	if window < 2 {
		return 0
	}
	xs := make([]float64, window)
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, series[:window], nil, false)
	if math.IsNaN(slope) {
		return 0
	}
	return slope
}

func initWindow(series []float64, seasonalPeriod int) int {
	window := seasonalPeriod
	if half := len(series) / 2; window > half {
		window = half
	}
	if window < 1 {
		window = 1
	}
	return window
}

// initialSeasonal computes seasonal factors by classical decomposition:
// phase averages over complete cycles relative to the grand mean, then
// normalized so additive factors sum to zero and multiplicative factors
// have geometric mean one. Fewer than two complete cycles yields the
// neutral factors (0 additive, 1 multiplicative).
func initialSeasonal(series []float64, period int, seasonalType string) []float64 {
	multiplicative := seasonalType == constants.SeasonalMultiplicative

	factors := make([]float64, period)
	if multiplicative {
		for i := range factors {
			factors[i] = 1
		}
	}

	cycles := len(series) / period
	if cycles < 2 {
		return factors
	}

	complete := series[:cycles*period]
	grandMean := stat.Mean(complete, nil)

	for phase := 0; phase < period; phase++ {
		var sum float64
		for c := 0; c < cycles; c++ {
			sum += complete[c*period+phase]
		}
		avg := sum / float64(cycles)
		if multiplicative {
			if grandMean == 0 {
				factors[phase] = 1
			} else {
				factors[phase] = avg / grandMean
			}
		} else {
			factors[phase] = avg - grandMean
		}
	}

	normalizeSeasonal(factors, multiplicative)
	return factors
}

// normalizeSeasonal rescales factors in place: additive to zero sum,
// multiplicative to geometric mean one.
func normalizeSeasonal(factors []float64, multiplicative bool) {
	if len(factors) == 0 {
		return
	}

	if !multiplicative {
		mean := stat.Mean(factors, nil)
		for i := range factors {
			factors[i] -= mean
		}
		return
	}

	logSum := 0.0
	for i := range factors {
		if factors[i] < constants.SeasonalDivisorMin {
			factors[i] = constants.SeasonalDivisorMin
		}
		logSum += math.Log(factors[i])
	}
	geoMean := math.Exp(logSum / float64(len(factors)))
	if geoMean == 0 || math.IsNaN(geoMean) || math.IsInf(geoMean, 0) {
		return
	}
	for i := range factors {
		factors[i] /= geoMean
	}
}

// Metrics computes the goodness-of-fit block with the model's parameter
// count.
func (e *Estimator) Metrics(model *Model) *models.ForecastMetrics {
	if len(model.Fitted) == 0 {
		return &models.ForecastMetrics{}
	}
	return stats.Calculate(model.Data, model.Fitted, model.ParamCount)
}
