package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	config := DefaultConfig()
	config.EnableMetrics = false
	srv, err := NewServer(config, nil)
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	recorder := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(recorder, req)
	return recorder
}

func TestForecastEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body, err := json.Marshal(ForecastRequest{
		Field:  "revenue",
		Values: []float64{10, 12, 14, 16, 18, 20},
		Model: &models.ModelConfig{
			Kind: constants.ModelKindSmoothing,
			Smoothing: &models.SmoothingConfig{
				ModelClass: constants.SmoothingDouble,
				Alpha:      0.9,
				Beta:       0.9,
			},
		},
		Horizon: 3,
	})
	require.NoError(t, err)

	recorder := doRequest(t, srv, "POST", "/api/v1/forecast", body)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, constants.ContentTypeJSON, recorder.Header().Get(constants.HeaderContentType))
	assert.NotEmpty(t, recorder.Header().Get(constants.HeaderRequestID))

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "revenue", result.Field)
	assert.Equal(t, "Holt Linear Trend", result.Model)
	require.Len(t, result.Forecast.Forecast, 3)
	assert.InDelta(t, 22.0, result.Forecast.Forecast[0], 1.0)
}

func TestForecastEndpointInvalidBody(t *testing.T) {
	srv := newTestServer(t)
	recorder := doRequest(t, srv, "POST", "/api/v1/forecast", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INVALID_INPUT")
}

func TestForecastEndpointUnknownKind(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(ForecastRequest{
		Values: []float64{1, 2, 3},
		Model:  &models.ModelConfig{Kind: "prophet"},
	})
	recorder := doRequest(t, srv, "POST", "/api/v1/forecast", body)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INVALID_MODEL_KIND")
}

func TestForecastEndpointEmptySeries(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(ForecastRequest{
		Model: &models.ModelConfig{
			Kind: constants.ModelKindSmoothing,
			Smoothing: &models.SmoothingConfig{
				ModelClass: constants.SmoothingSimple,
				Alpha:      0.3,
			},
		},
	})
	recorder := doRequest(t, srv, "POST", "/api/v1/forecast", body)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INSUFFICIENT_DATA")
}

func TestForecastCSVEndpoint(t *testing.T) {
	srv := newTestServer(t)

	csv := "date,value\n2024-01-01,10\n2024-01-02,12\n2024-01-03,14\n2024-01-04,16\n2024-01-05,18\n2024-01-06,20\n"
	req := httptest.NewRequest("POST", "/api/v1/forecast/csv?horizon=2", strings.NewReader(csv))
	recorder := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "value", result.Field)
	require.Len(t, result.Forecast.Forecast, 2)
	require.NotNil(t, result.Optimized)
}

func TestForecastCSVEndpointARIMA(t *testing.T) {
	srv := newTestServer(t)

	csv := "value\n10\n13\n9\n14\n8\n15\n11\n12\n9\n14\n10\n13\n"
	req := httptest.NewRequest("POST", "/api/v1/forecast/csv?kind=arima&p=1&d=0&q=1&horizon=3", strings.NewReader(csv))
	recorder := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, "ARIMA(1,0,1)", result.Model)
	require.NotNil(t, result.Diagnostics)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	recorder := doRequest(t, srv, "GET", "/health", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "healthy")
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t)
	recorder := doRequest(t, srv, "GET", "/version", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), constants.AppVersion)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)
	recorder := doRequest(t, srv, "GET", "/api/v1/unknown", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "NOT_FOUND")
}
