package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlens/tsforecast/pkg/models"
)

func writeTestCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestForecastCommandJSON(t *testing.T) {
	tempDir := t.TempDir()
	input := writeTestCSV(t, tempDir, "linear.csv",
		"date,value\n2024-01-01,10\n2024-01-02,12\n2024-01-03,14\n2024-01-04,16\n2024-01-05,18\n2024-01-06,20\n")

	output, err := runCLI(t, "forecast",
		"--input", input,
		"--class", "double",
		"--alpha", "0.9", "--beta", "0.9",
		"--auto-optimize=false",
		"--horizon", "3",
		"--format", "json")
	require.NoError(t, err)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(output), &result))

	assert.Equal(t, "value", result.Field)
	assert.Len(t, result.Forecast.Forecast, 3)
	// The series grows by 2 per period, so the one-step forecast should
	// land close to 22.
	assert.InDelta(t, 22.0, result.Forecast.Forecast[0], 1.0)
	assert.Less(t, result.Forecast.Lower[0], result.Forecast.Forecast[0])
	assert.Greater(t, result.Forecast.Upper[0], result.Forecast.Forecast[0])
}

func TestForecastCommandARIMAText(t *testing.T) {
	tempDir := t.TempDir()
	input := writeTestCSV(t, tempDir, "flat.csv",
		"value\n50\n50\n50\n50\n50\n50\n50\n50\n50\n50\n50\n50\n")

	output, err := runCLI(t, "forecast",
		"--input", input,
		"--model", "arima",
		"--p", "1", "--d", "0", "--q", "1",
		"--horizon", "2")
	require.NoError(t, err)

	assert.Contains(t, output, "ARIMA(1,0,1)")
	assert.Contains(t, output, "Forecast")
	assert.Contains(t, output, "50.0000")
}

func TestForecastCommandMissingInput(t *testing.T) {
	_, err := runCLI(t, "forecast", "--input", "/nonexistent/data.csv")
	assert.Error(t, err)
}

func TestAnalyzeCommandJSON(t *testing.T) {
	tempDir := t.TempDir()
	input := writeTestCSV(t, tempDir, "trend.csv",
		"value\n1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n")

	output, err := runCLI(t, "analyze", "--input", input, "--max-lag", "5", "--format", "json")
	require.NoError(t, err)

	var report struct {
		Observations    int       `json:"observations"`
		Mean            float64   `json:"mean"`
		Autocorrelation []float64 `json:"autocorrelation"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &report))

	assert.Equal(t, 15, report.Observations)
	assert.InDelta(t, 8.0, report.Mean, 1e-9)
	require.Len(t, report.Autocorrelation, 6)
	assert.InDelta(t, 1.0, report.Autocorrelation[0], 1e-9)
}
