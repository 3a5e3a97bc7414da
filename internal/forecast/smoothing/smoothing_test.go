package smoothing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

func repeatCycle(cycle []float64, cycles int) []float64 {
	series := make([]float64, 0, len(cycle)*cycles)
	for i := 0; i < cycles; i++ {
		series = append(series, cycle...)
	}
	return series
}

func TestSimpleSmoothingConstantSeries(t *testing.T) {
	e := NewEstimator(&models.SmoothingConfig{
		ModelClass: constants.SmoothingSimple,
		Alpha:      0.5,
	}, nil)

	model, optimized := e.Fit([]float64{8, 8, 8, 8, 8, 8})
	assert.Nil(t, optimized)

	for _, l := range model.Level {
		assert.InDelta(t, 8.0, l, 1e-9)
	}
	assert.Zero(t, model.ResidualVariance)

	forecast := e.Forecast(model, 3)
	for h := 0; h < 3; h++ {
		assert.InDelta(t, 8.0, forecast.Forecast[h], 1e-9)
		assert.InDelta(t, 8.0, forecast.Lower[h], 1e-9)
		assert.InDelta(t, 8.0, forecast.Upper[h], 1e-9)
	}
}

func TestDoubleSmoothingLinearTrend(t *testing.T) {
	e := NewEstimator(&models.SmoothingConfig{
		ModelClass: constants.SmoothingDouble,
		Alpha:      0.9,
		Beta:       0.9,
	}, nil)

	model, _ := e.Fit([]float64{10, 12, 14, 16, 18, 20})

	// Level initializes to the mean of the first three points and trend to
	// the OLS slope over them.
	assert.InDelta(t, 12.0, model.Level[0], 1e-9)
	assert.InDelta(t, 2.0, model.Trend[0], 1e-9)

	forecast := e.Forecast(model, 3)
	assert.InDelta(t, 22.018, forecast.Forecast[0], 0.01)
	// Undamped trend compounds linearly across the horizon.
	step1 := forecast.Forecast[1] - forecast.Forecast[0]
	step2 := forecast.Forecast[2] - forecast.Forecast[1]
	assert.InDelta(t, step1, step2, 1e-9)
}

func TestDoubleSmoothingDampedTrendFlattens(t *testing.T) {
	series := []float64{10, 12, 14, 16, 18, 20, 22, 24}

	undamped := NewEstimator(&models.SmoothingConfig{
		ModelClass: constants.SmoothingDouble,
		Alpha:      0.8,
		Beta:       0.2,
	}, nil)
	damped := NewEstimator(&models.SmoothingConfig{
		ModelClass: constants.SmoothingDouble,
		Alpha:      0.8,
		Beta:       0.2,
		Damping:    &models.DampingConfig{Enabled: true, Factor: 0.85},
	}, nil)

	mu, _ := undamped.Fit(series)
	md, _ := damped.Fit(series)
	assert.Equal(t, 1.0, mu.Phi)
	assert.Equal(t, 0.85, md.Phi)

	fu := undamped.Forecast(mu, 10)
	fd := damped.Forecast(md, 10)

	// Damping shrinks each successive trend increment, so the damped
	// forecast falls behind the undamped one at long horizons.
	assert.Less(t, fd.Forecast[9], fu.Forecast[9])
	dampedStepLate := fd.Forecast[9] - fd.Forecast[8]
	dampedStepEarly := fd.Forecast[1] - fd.Forecast[0]
	assert.Less(t, dampedStepLate, dampedStepEarly)
}

func TestTripleAdditiveInitialSeasonal(t *testing.T) {
	series := repeatCycle([]float64{1, 2, 3, 4}, 20)
	factors := initialSeasonal(series, 4, constants.SeasonalAdditive)

	require.Len(t, factors, 4)
	assert.InDelta(t, -1.5, factors[0], 1e-9)
	assert.InDelta(t, -0.5, factors[1], 1e-9)
	assert.InDelta(t, 0.5, factors[2], 1e-9)
	assert.InDelta(t, 1.5, factors[3], 1e-9)

	var sum float64
	for _, f := range factors {
		sum += f
	}
	assert.InDelta(t, 0.0, sum, 1e-9)
}

func TestTripleMultiplicativeInitialSeasonal(t *testing.T) {
	series := repeatCycle([]float64{10, 20, 30, 40}, 10)
	factors := initialSeasonal(series, 4, constants.SeasonalMultiplicative)

	require.Len(t, factors, 4)
	logSum := 0.0
	for _, f := range factors {
		assert.Positive(t, f)
		logSum += math.Log(f)
	}
	geoMean := math.Exp(logSum / 4)
	assert.InDelta(t, 1.0, geoMean, 1e-9)
}

func TestInitialSeasonalFewerThanTwoCycles(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}

	additive := initialSeasonal(series, 4, constants.SeasonalAdditive)
	for _, f := range additive {
		assert.Zero(t, f)
	}

	multiplicative := initialSeasonal(series, 4, constants.SeasonalMultiplicative)
	for _, f := range multiplicative {
		assert.Equal(t, 1.0, f)
	}
}

func TestTripleAdditiveForecastContinuesCycle(t *testing.T) {
	series := repeatCycle([]float64{1, 2, 3, 4}, 20)
	e := NewEstimator(&models.SmoothingConfig{
		ModelClass:     constants.SmoothingTriple,
		Alpha:          0.3,
		Beta:           0.1,
		Gamma:          0.1,
		SeasonalType:   constants.SeasonalAdditive,
		SeasonalPeriod: 4,
	}, nil)

	model, _ := e.Fit(series)
	forecast := e.Forecast(model, 4)

	// The series ends on phase 3, so the forecast resumes at phase 0.
	assert.InDelta(t, 1.0, forecast.Forecast[0], 0.3)
	assert.InDelta(t, 2.0, forecast.Forecast[1], 0.3)
	assert.InDelta(t, 3.0, forecast.Forecast[2], 0.3)
	assert.InDelta(t, 4.0, forecast.Forecast[3], 0.3)
}

func TestTripleMultiplicativeFitIsFinite(t *testing.T) {
	series := repeatCycle([]float64{10, 20, 30, 40}, 8)
	e := NewEstimator(&models.SmoothingConfig{
		ModelClass:     constants.SmoothingTriple,
		Alpha:          0.4,
		Beta:           0.1,
		Gamma:          0.2,
		SeasonalType:   constants.SeasonalMultiplicative,
		SeasonalPeriod: 4,
	}, nil)

	model, _ := e.Fit(series)
	for _, f := range model.Fitted {
		assert.False(t, math.IsNaN(f))
		assert.False(t, math.IsInf(f, 0))
	}
	for _, s := range model.Seasonal {
		assert.Positive(t, s)
	}
}

func TestParamCount(t *testing.T) {
	tests := []struct {
		name   string
		config *models.SmoothingConfig
		want   int
	}{
		{
			name:   "simple",
			config: &models.SmoothingConfig{ModelClass: constants.SmoothingSimple, Alpha: 0.3},
			want:   1,
		},
		{
			name:   "double",
			config: &models.SmoothingConfig{ModelClass: constants.SmoothingDouble, Alpha: 0.3, Beta: 0.1},
			want:   2,
		},
		{
			name: "double damped",
			config: &models.SmoothingConfig{
				ModelClass: constants.SmoothingDouble, Alpha: 0.3, Beta: 0.1,
				Damping: &models.DampingConfig{Enabled: true, Factor: 0.9},
			},
			want: 3,
		},
		{
			name: "triple",
			config: &models.SmoothingConfig{
				ModelClass: constants.SmoothingTriple, Alpha: 0.3, Beta: 0.1, Gamma: 0.1,
				SeasonalPeriod: 4,
			},
			want: 7, // alpha + beta + gamma + 4 initial seasonal states
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEstimator(tt.config, nil)
			model, _ := e.Fit(repeatCycle([]float64{1, 2, 3, 4}, 4))
			assert.Equal(t, tt.want, model.ParamCount)
		})
	}
}

func TestFitEmptySeries(t *testing.T) {
	e := NewEstimator(&models.SmoothingConfig{ModelClass: constants.SmoothingSimple, Alpha: 0.3}, nil)
	model, optimized := e.Fit(nil)

	assert.Nil(t, optimized)
	assert.Empty(t, model.Level)
	assert.Empty(t, model.Fitted)

	forecast := e.Forecast(model, 3)
	for _, v := range forecast.Forecast {
		assert.Zero(t, v)
	}
}
