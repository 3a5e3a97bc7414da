package forecast

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/errors"
	"github.com/trendlens/tsforecast/pkg/models"
)

func doubleConfig(alpha, beta float64) *models.ModelConfig {
	return &models.ModelConfig{
		Kind: constants.ModelKindSmoothing,
		Smoothing: &models.SmoothingConfig{
			ModelClass: constants.SmoothingDouble,
			Alpha:      alpha,
			Beta:       beta,
		},
	}
}

func TestAnalyzeDoubleSmoothingLinearSeries(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("revenue", []float64{10, 12, 14, 16, 18, 20})

	result, err := engine.Analyze(context.Background(), series, doubleConfig(0.9, 0.9), 3)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "revenue", result.Field)
	assert.Equal(t, "Holt Linear Trend", result.Model)
	require.Len(t, result.Forecast.Forecast, 3)
	assert.InDelta(t, 22.0, result.Forecast.Forecast[0], 1.0)

	// Uncertainty grows with the horizon.
	width1 := result.Forecast.Upper[0] - result.Forecast.Lower[0]
	width2 := result.Forecast.Upper[1] - result.Forecast.Lower[1]
	assert.Greater(t, width2, width1)

	require.NotNil(t, result.Components)
	assert.Len(t, result.Components.Level, 6)
	assert.Len(t, result.Components.FittedValues, 6)
	assert.Nil(t, result.Diagnostics)
}

func TestAnalyzeARIMA(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("load", []float64{10, 13, 9, 14, 8, 15, 11, 12, 9, 14, 10, 13})

	config := &models.ModelConfig{
		Kind:  constants.ModelKindARIMA,
		ARIMA: &models.ARIMAConfig{P: 1, D: 1, Q: 1},
	}
	result, err := engine.Analyze(context.Background(), series, config, 5)
	require.NoError(t, err)

	assert.Equal(t, "ARIMA(1,1,1)", result.Model)
	require.NotNil(t, result.Diagnostics)
	require.NotNil(t, result.Metrics)
	assert.Nil(t, result.Optimized)
	require.Len(t, result.Forecast.Forecast, 5)
	for _, v := range result.Forecast.Forecast {
		assert.False(t, math.IsNaN(v))
	}
}

func TestAnalyzeAutoOptimizeReturnsParams(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{10, 12, 11, 14, 13, 16, 15, 18, 17, 20})

	config := &models.ModelConfig{
		Kind: constants.ModelKindSmoothing,
		Smoothing: &models.SmoothingConfig{
			ModelClass:   constants.SmoothingDouble,
			AutoOptimize: true,
		},
	}
	result, err := engine.Analyze(context.Background(), series, config, 0)
	require.NoError(t, err)

	require.NotNil(t, result.Optimized)
	assert.Positive(t, result.Optimized.Alpha)
	// Horizon <= 0 falls back to the default.
	assert.Len(t, result.Forecast.Forecast, constants.DefaultHorizon)
}

func TestAnalyzeNilSeries(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.Analyze(context.Background(), nil, doubleConfig(0.5, 0.1), 3)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
}

func TestAnalyzeNilConfig(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{1, 2, 3})
	_, err := engine.Analyze(context.Background(), series, nil, 3)
	assert.Error(t, err)
}

func TestAnalyzeUnknownKind(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{1, 2, 3})
	_, err := engine.Analyze(context.Background(), series, &models.ModelConfig{Kind: "prophet"}, 3)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.CodeInvalidModelKind, appErr.Code)
}

func TestAnalyzeAllNonFiniteSeries(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{math.NaN(), math.Inf(1), math.NaN()})

	_, err := engine.Analyze(context.Background(), series, doubleConfig(0.5, 0.1), 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
}

func TestAnalyzeNonFiniteValuesDropped(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{10, math.NaN(), 12, 14, math.Inf(1), 16, 18, 20})

	result, err := engine.Analyze(context.Background(), series, doubleConfig(0.9, 0.9), 1)
	require.NoError(t, err)
	assert.Len(t, result.OriginalData, 6)
}

func TestAnalyzeTripleNeedsFullCycle(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{1, 2, 3, 4, 5})

	config := &models.ModelConfig{
		Kind: constants.ModelKindSmoothing,
		Smoothing: &models.SmoothingConfig{
			ModelClass:     constants.SmoothingTriple,
			Alpha:          0.3,
			Beta:           0.1,
			Gamma:          0.1,
			SeasonalPeriod: 12,
		},
	}
	_, err := engine.Analyze(context.Background(), series, config, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInsufficientData))
}

func TestAnalyzeInvalidSmoothingParams(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{1, 2, 3, 4, 5})

	_, err := engine.Analyze(context.Background(), series, doubleConfig(1.5, 0.1), 3)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.CodeInvalidAlpha, appErr.Code)
}

func TestAnalyzeCancelledContext(t *testing.T) {
	engine := NewEngine(nil)
	series := models.NewObservationSeries("", []float64{1, 2, 3, 4, 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Analyze(ctx, series, doubleConfig(0.5, 0.1), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSmoothingModelNames(t *testing.T) {
	tests := []struct {
		config *models.SmoothingConfig
		want   string
	}{
		{&models.SmoothingConfig{ModelClass: constants.SmoothingSimple}, "Simple Exponential Smoothing"},
		{&models.SmoothingConfig{ModelClass: constants.SmoothingDouble}, "Holt Linear Trend"},
		{
			&models.SmoothingConfig{
				ModelClass: constants.SmoothingDouble,
				Damping:    &models.DampingConfig{Enabled: true, Factor: 0.9},
			},
			"Damped Holt Linear Trend",
		},
		{
			&models.SmoothingConfig{
				ModelClass:     constants.SmoothingTriple,
				SeasonalType:   constants.SeasonalAdditive,
				SeasonalPeriod: 12,
			},
			"Holt-Winters (additive, period 12)",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, smoothingModelName(tt.config))
	}
}
