package constants

import "time"

// Application constants
const (
	// Application metadata
	AppName        = "tsforecast"
	AppDescription = "Time Series Modeling and Forecasting Engine"
	AppVersion     = "0.1.0"

	// API constants
	APIVersion = "v1"
	APIPrefix  = "/api/v1"

	// Default server configuration
	DefaultPort            = 8080
	DefaultMetricsPort     = 9090
	DefaultHost            = "0.0.0.0"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	MaxRequestSize         = 10 * 1024 * 1024 // 10MB

	// HTTP headers
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
	ContentTypeJSON   = "application/json"
)

// Model order bounds shared by config validation and the bounded search space.
const (
	MaxAROrder            = 5
	MaxDifferencingOrder  = 2
	MaxMAOrder            = 5
	MinSeasonalPeriod     = 2
	DefaultSeasonalPeriod = 12
	DefaultHorizon        = 10
)

// Estimation constants. The AR/MA dampening factors and the forecast
// uncertainty growth rates are empirical; changing them changes every
// downstream metric.
const (
	ARDampening         = 0.8
	MADampening         = 0.7
	ARIMAVarianceGrowth = 0.1
	LjungBoxLags        = 10
	StationarityTStat   = 1.96
	MinStationarityObs  = 10
	ZScore95            = 1.96
	MAPEExclusionBound  = 0.001
	SeasonalDivisorMin  = 0.001
)

// Smoothing parameter grid. Enumeration order is alpha, beta, gamma, phi;
// ties on AIC keep the first combination encountered.
const (
	GridAlphaMin   = 0.01
	GridAlphaMax   = 0.99
	GridAlphaSteps = 15
	GridBetaMin    = 0.001
	GridBetaMax    = 0.5
	GridBetaSteps  = 10
	GridGammaMin   = 0.001
	GridGammaMax   = 0.5
	GridGammaSteps = 10
	GridPhiMin     = 0.8
	GridPhiMax     = 1.0
	GridPhiSteps   = 5
)

// Model kinds and classes
const (
	ModelKindARIMA     = "arima"
	ModelKindSmoothing = "exponential_smoothing"

	SmoothingSimple = "simple"
	SmoothingDouble = "double"
	SmoothingTriple = "triple"

	SeasonalAdditive       = "additive"
	SeasonalMultiplicative = "multiplicative"
)
