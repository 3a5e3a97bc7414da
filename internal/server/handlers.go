package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/trendlens/tsforecast/internal/forecast"
	"github.com/trendlens/tsforecast/internal/observability/metrics"
	"github.com/trendlens/tsforecast/internal/timeseries"
	"github.com/trendlens/tsforecast/pkg/constants"
	apperrors "github.com/trendlens/tsforecast/pkg/errors"
	"github.com/trendlens/tsforecast/pkg/models"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	engine    *forecast.Engine
	metrics   *metrics.Metrics
	logger    *logrus.Logger
	startTime time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(engine *forecast.Engine, m *metrics.Metrics, logger *logrus.Logger) *Handlers {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handlers{
		engine:    engine,
		metrics:   m,
		logger:    logger,
		startTime: time.Now(),
	}
}

// ForecastRequest is the JSON body for the forecast endpoint. Either Values
// or Points must be provided; Points wins when both are set.
type ForecastRequest struct {
	Field   string              `json:"field,omitempty"`
	Values  []float64           `json:"values,omitempty"`
	Points  []models.DataPoint  `json:"points,omitempty"`
	Model   *models.ModelConfig `json:"model"`
	Horizon int                 `json:"horizon,omitempty"`
}

// Forecast runs one analysis for a JSON request body.
func (h *Handlers) Forecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apperrors.NewValidationError(apperrors.CodeInvalidInput,
			fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	series := h.buildSeries(&req)
	h.runAnalysis(w, r, series, req.Model, req.Horizon)
}

// ForecastCSV runs one analysis for a CSV request body. The model
// configuration comes from query parameters.
func (h *Handlers) ForecastCSV(w http.ResponseWriter, r *http.Request) {
	opts := timeseries.DefaultCSVOptions()
	if col := r.URL.Query().Get("value_column"); col != "" {
		opts.ValueColumn = col
	}
	if col := r.URL.Query().Get("timestamp_column"); col != "" {
		opts.TimestampColumn = col
	}

	series, err := timeseries.LoadCSVFromReader(r.Body, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	config, err := modelConfigFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	horizon, _ := strconv.Atoi(r.URL.Query().Get("horizon"))
	h.runAnalysis(w, r, series, config, horizon)
}

func (h *Handlers) buildSeries(req *ForecastRequest) *models.ObservationSeries {
	if len(req.Points) > 0 {
		return &models.ObservationSeries{Field: req.Field, Points: req.Points}
	}
	points := make([]models.DataPoint, len(req.Values))
	for i, v := range req.Values {
		points[i] = models.DataPoint{Timestamp: float64(i), Value: v}
	}
	return &models.ObservationSeries{Field: req.Field, Points: points}
}

func (h *Handlers) runAnalysis(w http.ResponseWriter, r *http.Request, series *models.ObservationSeries, config *models.ModelConfig, horizon int) {
	kind := "unknown"
	if config != nil {
		kind = config.Kind
	}

	start := time.Now()
	result, err := h.engine.Analyze(r.Context(), series, config, horizon)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordAnalysis(kind, "error", time.Since(start).Seconds())
		}
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAnalysis(kind, "success", time.Since(start).Seconds())
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Health reports liveness and uptime.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"version":        constants.AppVersion,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// Version reports build identification.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"name":    constants.AppName,
		"version": constants.AppVersion,
	})
}

// NotFound is the catch-all handler.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusNotFound, map[string]interface{}{
		"error": map[string]string{
			"code":    "NOT_FOUND",
			"message": fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path),
		},
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := err.Error()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		if appErr.HTTPStatus != 0 {
			status = appErr.HTTPStatus
		}
		code = appErr.Code
		message = appErr.Message
	}

	h.logger.WithFields(logrus.Fields{
		"status":     status,
		"code":       code,
		"path":       r.URL.Path,
		"request_id": getRequestID(r),
	}).WithError(err).Warn("Request failed")

	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
}

// modelConfigFromQuery builds a model configuration from the CSV endpoint's
// query parameters. Defaults to auto-optimized double smoothing.
func modelConfigFromQuery(r *http.Request) (*models.ModelConfig, error) {
	q := r.URL.Query()
	kind := q.Get("kind")
	if kind == "" {
		kind = constants.ModelKindSmoothing
	}

	switch kind {
	case constants.ModelKindARIMA:
		p, _ := strconv.Atoi(q.Get("p"))
		d, _ := strconv.Atoi(q.Get("d"))
		mq, _ := strconv.Atoi(q.Get("q"))
		if q.Get("p") == "" && q.Get("d") == "" && q.Get("q") == "" {
			p, d, mq = 1, 1, 1
		}
		return &models.ModelConfig{
			Kind:  constants.ModelKindARIMA,
			ARIMA: &models.ARIMAConfig{P: p, D: d, Q: mq},
		}, nil

	case constants.ModelKindSmoothing:
		class := q.Get("class")
		if class == "" {
			class = constants.SmoothingDouble
		}
		cfg := &models.SmoothingConfig{
			ModelClass:   class,
			AutoOptimize: q.Get("auto_optimize") != "false",
		}
		if period := q.Get("seasonal_period"); period != "" {
			cfg.SeasonalPeriod, _ = strconv.Atoi(period)
		}
		if st := q.Get("seasonal_type"); st != "" {
			cfg.SeasonalType = st
		}
		return &models.ModelConfig{Kind: constants.ModelKindSmoothing, Smoothing: cfg}, nil

	default:
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidConfig,
			fmt.Sprintf("unknown model kind %q", kind))
	}
}
