package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/trendlens/tsforecast/internal/forecast/stats"
	"github.com/trendlens/tsforecast/internal/timeseries"
)

type AnalyzeOptions struct {
	InputFile       string
	ValueColumn     string
	TimestampColumn string
	MaxLag          int
	OutputFormat    string
	OutputFile      string
}

// analysisReport is the JSON shape of the analyze command output.
type analysisReport struct {
	Field           string    `json:"field,omitempty"`
	Observations    int       `json:"observations"`
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"std_dev"`
	Min             float64   `json:"min"`
	Max             float64   `json:"max"`
	Stationary      bool      `json:"stationary"`
	SuggestedDiff   int       `json:"suggested_differencing"`
	Autocorrelation []float64 `json:"autocorrelation"`
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize a time series and check model preconditions",
		Long: `Compute summary statistics, the autocorrelation function, and a
stationarity check for a CSV time series, and suggest a differencing
order for ARIMA modeling.`,
		Example: `  # Basic analysis
  tsforecast analyze --input revenue.csv

  # Longer ACF and JSON output
  tsforecast analyze --input revenue.csv --max-lag 24 --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input CSV file (required)")
	cmd.Flags().StringVar(&opts.ValueColumn, "value-column", "value", "Name of the value column")
	cmd.Flags().StringVar(&opts.TimestampColumn, "timestamp-column", "", "Name of the timestamp column")
	cmd.Flags().IntVar(&opts.MaxLag, "max-lag", 10, "Maximum autocorrelation lag")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runAnalyze(stdout io.Writer, opts *AnalyzeOptions) error {
	csvOpts := timeseries.DefaultCSVOptions()
	csvOpts.ValueColumn = opts.ValueColumn
	csvOpts.TimestampColumn = opts.TimestampColumn

	series, err := timeseries.LoadCSV(opts.InputFile, csvOpts)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.InputFile, err)
	}

	values := stats.Clean(series.Values())
	if len(values) == 0 {
		return fmt.Errorf("no finite observations in %s", opts.InputFile)
	}

	report := buildReport(series.Field, values, opts.MaxLag)

	out, cleanup, err := openOutput(stdout, opts.OutputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.OutputFormat == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	printReport(out, report)
	return nil
}

func buildReport(field string, values []float64, maxLag int) *analysisReport {
	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}

	report := &analysisReport{
		Field:           field,
		Observations:    len(values),
		Mean:            stat.Mean(values, nil),
		StdDev:          stat.StdDev(values, nil),
		Min:             min,
		Max:             max,
		Stationary:      stats.CheckStationarity(values),
		Autocorrelation: stats.Autocorrelation(values, maxLag),
	}
	if math.IsNaN(report.StdDev) {
		report.StdDev = 0
	}

	// Suggest one round of differencing per failed stationarity check, up
	// to the supported maximum of 2.
	working := values
	for report.SuggestedDiff < 2 && !stats.CheckStationarity(working) {
		working = stats.Difference(working, 1)
		report.SuggestedDiff++
		if len(working) == 0 {
			break
		}
	}

	return report
}

func printReport(w io.Writer, report *analysisReport) {
	fmt.Fprintln(w, "Series Analysis")
	fmt.Fprintln(w, "===============")
	if report.Field != "" {
		fmt.Fprintf(w, "Field: %s\n", report.Field)
	}
	fmt.Fprintf(w, "Observations: %d\n", report.Observations)
	fmt.Fprintf(w, "Mean: %.4f\n", report.Mean)
	fmt.Fprintf(w, "Std Dev: %.4f\n", report.StdDev)
	fmt.Fprintf(w, "Min: %.4f\n", report.Min)
	fmt.Fprintf(w, "Max: %.4f\n", report.Max)
	fmt.Fprintf(w, "Stationary: %v\n", report.Stationary)
	fmt.Fprintf(w, "Suggested differencing order: %d\n", report.SuggestedDiff)

	fmt.Fprintln(w, "\nAutocorrelation:")
	for lag, acf := range report.Autocorrelation {
		fmt.Fprintf(w, "  lag %-3d %+.4f\n", lag, acf)
	}
}
