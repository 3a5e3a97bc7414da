// Package forecast exposes the analysis engine: it validates input,
// dispatches to the ARIMA or exponential smoothing estimator, and bundles
// fitted components, forecasts, intervals, diagnostics, and metrics into a
// single immutable result.
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trendlens/tsforecast/internal/forecast/arima"
	"github.com/trendlens/tsforecast/internal/forecast/smoothing"
	"github.com/trendlens/tsforecast/internal/forecast/stats"
	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/errors"
	"github.com/trendlens/tsforecast/pkg/models"
)

// Engine runs analyses. Each Analyze call is a pure function of its
// arguments; an Engine may be shared across goroutines.
type Engine struct {
	logger *logrus.Logger
}

// NewEngine creates an analysis engine.
func NewEngine(logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{logger: logger}
}

// Analyze fits the configured model to the series and forecasts horizon
// periods ahead. The input series is cleaned first (non-finite values
// dropped, never imputed); an empty result after cleaning fails with an
// insufficient-data error. Internal numerical degeneracies are absorbed
// into neutral values so a successful return is always structurally valid.
func (e *Engine) Analyze(ctx context.Context, series *models.ObservationSeries, config *models.ModelConfig, horizon int) (*models.AnalysisResult, error) {
	if series == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "observation series is required")
	}
	if config == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidConfig, "model configuration is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if horizon <= 0 {
		horizon = constants.DefaultHorizon
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := stats.Clean(series.Values())
	if len(cleaned) == 0 {
		return nil, errors.NewInsufficientDataError("series is empty after removing non-finite values")
	}

	start := time.Now()
	result := &models.AnalysisResult{
		ID:           uuid.New().String(),
		Field:        series.Field,
		Kind:         config.Kind,
		OriginalData: cleaned,
		GeneratedAt:  start,
	}

	switch config.Kind {
	case constants.ModelKindARIMA:
		e.analyzeARIMA(result, cleaned, config.ARIMA, horizon)
	case constants.ModelKindSmoothing:
		if err := e.analyzeSmoothing(result, cleaned, config.Smoothing, horizon); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)

	e.logger.WithFields(logrus.Fields{
		"analysis_id":  result.ID,
		"field":        series.Field,
		"kind":         config.Kind,
		"model":        result.Model,
		"observations": len(cleaned),
		"horizon":      horizon,
		"duration_ms":  result.Duration.Milliseconds(),
	}).Info("Analysis completed")

	return result, nil
}

func (e *Engine) analyzeARIMA(result *models.AnalysisResult, cleaned []float64, config *models.ARIMAConfig, horizon int) {
	estimator := arima.NewEstimator(config, e.logger)
	model := estimator.Fit(cleaned)

	result.Model = fmt.Sprintf("ARIMA(%d,%d,%d)", config.P, config.D, config.Q)
	result.Components = &models.FittedComponents{FittedValues: model.Fitted}
	result.Forecast = estimator.Forecast(model, horizon)
	result.Metrics = estimator.Metrics(model)
	result.Diagnostics = estimator.Diagnose(model)
}

func (e *Engine) analyzeSmoothing(result *models.AnalysisResult, cleaned []float64, config *models.SmoothingConfig, horizon int) error {
	config.ApplyDefaults()
	if config.ModelClass == constants.SmoothingTriple && len(cleaned) < config.SeasonalPeriod {
		return errors.NewInsufficientDataError(
			fmt.Sprintf("triple smoothing needs at least one full seasonal cycle (%d points), got %d",
				config.SeasonalPeriod, len(cleaned)))
	}

	estimator := smoothing.NewEstimator(config, e.logger)
	model, optimized := estimator.Fit(cleaned)

	result.Model = smoothingModelName(config)
	result.Components = &models.FittedComponents{
		Level:        model.Level,
		Trend:        model.Trend,
		Seasonal:     model.Seasonal,
		FittedValues: model.Fitted,
	}
	result.Forecast = estimator.Forecast(model, horizon)
	result.Metrics = estimator.Metrics(model)
	result.Optimized = optimized
	return nil
}

func smoothingModelName(config *models.SmoothingConfig) string {
	switch config.ModelClass {
	case constants.SmoothingSimple:
		return "Simple Exponential Smoothing"
	case constants.SmoothingDouble:
		if config.Damping != nil && config.Damping.Enabled {
			return "Damped Holt Linear Trend"
		}
		return "Holt Linear Trend"
	case constants.SmoothingTriple:
		return fmt.Sprintf("Holt-Winters (%s, period %d)", config.SeasonalType, config.SeasonalPeriod)
	default:
		return config.ModelClass
	}
}
