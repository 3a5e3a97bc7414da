package models

import (
	"fmt"
	"math"
	"time"

	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/errors"
)

// DataPoint is a single observation. Timestamp may be a plain index when
// true dates are unavailable.
type DataPoint struct {
	Timestamp float64 `json:"timestamp"`
	Value     float64 `json:"value"`
}

// ObservationSeries is an ordered sequence of observations for one field.
// It is created by the caller and treated as immutable by the engine.
type ObservationSeries struct {
	Field  string      `json:"field,omitempty"`
	Points []DataPoint `json:"points"`
}

// Values returns the raw observation values in order.
func (s *ObservationSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// NewObservationSeries builds a series from bare values, using the index as
// the timestamp.
func NewObservationSeries(field string, values []float64) *ObservationSeries {
	points := make([]DataPoint, len(values))
	for i, v := range values {
		points[i] = DataPoint{Timestamp: float64(i), Value: v}
	}
	return &ObservationSeries{Field: field, Points: points}
}

// ModelConfig selects and parameterizes one of the two estimators. Exactly
// one of ARIMA or Smoothing must be set, matching Kind.
type ModelConfig struct {
	Kind      string           `json:"kind"`
	ARIMA     *ARIMAConfig     `json:"arima,omitempty"`
	Smoothing *SmoothingConfig `json:"smoothing,omitempty"`
}

// ARIMAConfig contains the (p, d, q) orders and optional seasonal extension.
type ARIMAConfig struct {
	P              int  `json:"p"`
	D              int  `json:"d"`
	Q              int  `json:"q"`
	Seasonal       bool `json:"seasonal,omitempty"`
	SeasonalPeriod int  `json:"seasonal_period,omitempty"`
}

// DampingConfig enables trend damping for double/triple smoothing.
type DampingConfig struct {
	Enabled bool    `json:"enabled"`
	Factor  float64 `json:"factor"`
}

// SmoothingConfig contains the exponential smoothing model class and
// parameters.
type SmoothingConfig struct {
	ModelClass     string         `json:"model_class"`
	Alpha          float64        `json:"alpha"`
	Beta           float64        `json:"beta,omitempty"`
	Gamma          float64        `json:"gamma,omitempty"`
	SeasonalType   string         `json:"seasonal_type,omitempty"`
	SeasonalPeriod int            `json:"seasonal_period,omitempty"`
	AutoOptimize   bool           `json:"auto_optimize,omitempty"`
	Damping        *DampingConfig `json:"damping,omitempty"`
}

// Phi returns the damping factor, 1.0 when damping is disabled.
func (c *SmoothingConfig) Phi() float64 {
	if c.Damping != nil && c.Damping.Enabled {
		return c.Damping.Factor
	}
	return 1.0
}

// ApplyDefaults fills unset fields so every downstream formula is total.
// The seasonal period also sizes the level-initialization window for
// non-seasonal model classes.
func (c *SmoothingConfig) ApplyDefaults() {
	if c.SeasonalPeriod == 0 {
		c.SeasonalPeriod = constants.DefaultSeasonalPeriod
	}
	if c.SeasonalType == "" {
		c.SeasonalType = constants.SeasonalAdditive
	}
}

// Validate checks the configuration against the bounded parameter space.
func (c *ModelConfig) Validate() error {
	switch c.Kind {
	case constants.ModelKindARIMA:
		if c.ARIMA == nil {
			return errors.NewValidationError(errors.CodeInvalidConfig, "ARIMA configuration is required for kind arima")
		}
		return c.ARIMA.Validate()
	case constants.ModelKindSmoothing:
		if c.Smoothing == nil {
			return errors.NewValidationError(errors.CodeInvalidConfig, "smoothing configuration is required for kind exponential_smoothing")
		}
		return c.Smoothing.Validate()
	default:
		return errors.NewValidationError(errors.CodeInvalidModelKind,
			fmt.Sprintf("unknown model kind %q", c.Kind))
	}
}

// Validate checks ARIMA orders against the bounded search space.
func (c *ARIMAConfig) Validate() error {
	if c.P < 0 || c.P > constants.MaxAROrder {
		return errors.NewValidationError(errors.CodeInvalidAROrder,
			fmt.Sprintf("AR order (p) must be between 0 and %d", constants.MaxAROrder))
	}
	if c.D < 0 || c.D > constants.MaxDifferencingOrder {
		return errors.NewValidationError(errors.CodeInvalidDiffOrder,
			fmt.Sprintf("differencing order (d) must be between 0 and %d", constants.MaxDifferencingOrder))
	}
	if c.Q < 0 || c.Q > constants.MaxMAOrder {
		return errors.NewValidationError(errors.CodeInvalidMAOrder,
			fmt.Sprintf("MA order (q) must be between 0 and %d", constants.MaxMAOrder))
	}
	if c.Seasonal && c.SeasonalPeriod < constants.MinSeasonalPeriod {
		return errors.NewValidationError(errors.CodeInvalidSeason,
			fmt.Sprintf("seasonal period must be at least %d", constants.MinSeasonalPeriod))
	}
	return nil
}

// Validate checks smoothing parameters; all must lie strictly inside (0,1).
func (c *SmoothingConfig) Validate() error {
	switch c.ModelClass {
	case constants.SmoothingSimple, constants.SmoothingDouble, constants.SmoothingTriple:
	default:
		return errors.NewValidationError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown smoothing model class %q", c.ModelClass))
	}
	if !c.AutoOptimize {
		if !inOpenUnitInterval(c.Alpha) {
			return errors.NewValidationError(errors.CodeInvalidAlpha, "alpha must be in (0,1)")
		}
		if c.ModelClass != constants.SmoothingSimple && !inOpenUnitInterval(c.Beta) {
			return errors.NewValidationError(errors.CodeInvalidBeta, "beta must be in (0,1)")
		}
		if c.ModelClass == constants.SmoothingTriple && !inOpenUnitInterval(c.Gamma) {
			return errors.NewValidationError(errors.CodeInvalidGamma, "gamma must be in (0,1)")
		}
	}
	if c.Damping != nil && c.Damping.Enabled && !inOpenUnitInterval(c.Damping.Factor) {
		return errors.NewValidationError(errors.CodeInvalidDamping, "damping factor must be in (0,1)")
	}
	if c.ModelClass == constants.SmoothingTriple && c.SeasonalPeriod != 0 && c.SeasonalPeriod < constants.MinSeasonalPeriod {
		return errors.NewValidationError(errors.CodeInvalidSeason,
			fmt.Sprintf("seasonal period must be at least %d", constants.MinSeasonalPeriod))
	}
	if c.SeasonalType != "" &&
		c.SeasonalType != constants.SeasonalAdditive &&
		c.SeasonalType != constants.SeasonalMultiplicative {
		return errors.NewValidationError(errors.CodeInvalidConfig,
			fmt.Sprintf("unknown seasonal type %q", c.SeasonalType))
	}
	return nil
}

func inOpenUnitInterval(v float64) bool {
	return v > 0 && v < 1 && !math.IsNaN(v)
}

// FittedComponents are the per-step model states aligned to the input
// series. Trend and Seasonal are nil when the model class has no such
// component; Seasonal holds one cyclic factor per seasonal phase.
type FittedComponents struct {
	Level        []float64 `json:"level,omitempty"`
	Trend        []float64 `json:"trend,omitempty"`
	Seasonal     []float64 `json:"seasonal,omitempty"`
	FittedValues []float64 `json:"fitted_values"`
}

// ForecastResult holds point forecasts and their confidence bounds, one
// entry per horizon step.
type ForecastResult struct {
	Forecast []float64 `json:"forecast"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
}

// ForecastMetrics are the goodness-of-fit measures computed from in-sample
// residuals.
type ForecastMetrics struct {
	AIC  float64 `json:"aic"`
	BIC  float64 `json:"bic"`
	MSE  float64 `json:"mse"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	MAPE float64 `json:"mape"`
	R2   float64 `json:"r2"`
}

// ARIMADiagnostics carry residual diagnostics for the ARIMA estimator.
type ARIMADiagnostics struct {
	Stationary  bool      `json:"stationary"`
	ResidualACF []float64 `json:"residual_acf"`
	LjungBox    float64   `json:"ljung_box"`
}

// OptimizedParams records the smoothing parameters chosen by the grid
// search and the AIC they scored.
type OptimizedParams struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta,omitempty"`
	Gamma float64 `json:"gamma,omitempty"`
	Phi   float64 `json:"phi,omitempty"`
	AIC   float64 `json:"aic"`
}

// AnalysisResult is the immutable record returned for one analysis
// invocation. It is discarded and replaced on the next invocation; no state
// persists across calls.
type AnalysisResult struct {
	ID           string            `json:"id"`
	Field        string            `json:"field,omitempty"`
	Kind         string            `json:"kind"`
	Model        string            `json:"model"`
	OriginalData []float64         `json:"original_data"`
	Components   *FittedComponents `json:"components"`
	Forecast     *ForecastResult   `json:"forecast"`
	Metrics      *ForecastMetrics  `json:"metrics"`
	Diagnostics  *ARIMADiagnostics `json:"diagnostics,omitempty"`
	Optimized    *OptimizedParams  `json:"optimized_params,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Duration     time.Duration     `json:"duration"`
}
