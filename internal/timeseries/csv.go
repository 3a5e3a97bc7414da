// Package timeseries loads observation series from tabular input for the
// CLI and server surfaces.
package timeseries

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/trendlens/tsforecast/pkg/errors"
	"github.com/trendlens/tsforecast/pkg/models"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	TimestampColumn string // Column name for timestamps (optional)
	ValueColumn     string // Column name for values (default: "value")
	HasHeader       bool   // Whether the file has a header row (default: true)
	Delimiter       rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns the default loading options.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "value",
		HasHeader:   true,
		Delimiter:   ',',
	}
}

// LoadCSV loads an observation series from a CSV file. The field name of
// the series is taken from the value column header when present.
func LoadCSV(filename string, opts *CSVOptions) (*models.ObservationSeries, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads an observation series from an io.Reader.
// Timestamps may be RFC3339 dates, "2006-01-02" dates, or plain numbers;
// rows without a parseable timestamp fall back to the row index. Rows with
// non-numeric values are skipped.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*models.ObservationSeries, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	valueIdx, timestampIdx := -1, -1
	field := ""

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}
		for i, h := range header {
			h = strings.TrimSpace(h)
			switch {
			case strings.EqualFold(h, opts.ValueColumn):
				valueIdx = i
				field = h
			case opts.TimestampColumn != "" && strings.EqualFold(h, opts.TimestampColumn):
				timestampIdx = i
			case timestampIdx == -1 && (strings.EqualFold(h, "timestamp") || strings.EqualFold(h, "date") || strings.EqualFold(h, "ds")):
				timestampIdx = i
			}
		}
		if valueIdx == -1 {
			// Default to the last column when the value column is absent.
			valueIdx = len(header) - 1
			field = strings.TrimSpace(header[valueIdx])
		}
	} else {
		timestampIdx = 0
		valueIdx = 1
	}

	var points []models.DataPoint
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !opts.HasHeader && len(record) == 1 {
			timestampIdx = -1
			valueIdx = 0
		}
		if valueIdx < 0 || valueIdx >= len(record) {
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			continue
		}

		timestamp := float64(row)
		if timestampIdx >= 0 && timestampIdx < len(record) {
			if ts, ok := parseTimestamp(strings.TrimSpace(record[timestampIdx])); ok {
				timestamp = ts
			}
		}

		points = append(points, models.DataPoint{Timestamp: timestamp, Value: value})
		row++
	}

	if len(points) == 0 {
		return nil, apperrors.NewInsufficientDataError("no valid data rows found in CSV input")
	}

	return &models.ObservationSeries{Field: field, Points: points}, nil
}

func parseTimestamp(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.Unix()), true
		}
	}
	return 0, false
}
