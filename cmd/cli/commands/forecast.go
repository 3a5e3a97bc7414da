// Package commands implements the CLI subcommands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trendlens/tsforecast/cmd/cli/config"
	"github.com/trendlens/tsforecast/internal/forecast"
	"github.com/trendlens/tsforecast/internal/timeseries"
	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

type ForecastOptions struct {
	InputFile       string
	ValueColumn     string
	TimestampColumn string

	ModelKind string

	// ARIMA orders
	P int
	D int
	Q int

	// Smoothing parameters
	ModelClass     string
	Alpha          float64
	Beta           float64
	Gamma          float64
	AutoOptimize   bool
	SeasonalType   string
	SeasonalPeriod int
	Damping        float64

	Horizon      int
	OutputFormat string
	OutputFile   string
}

func NewForecastCmd() *cobra.Command {
	opts := &ForecastOptions{}

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fit a model to time series data and generate forecasts",
		Long: `Fit an ARIMA or exponential smoothing model to a CSV time series and
generate forecasts with 95% confidence intervals.`,
		Example: `  # Auto-optimized Holt linear trend
  tsforecast forecast --input revenue.csv

  # ARIMA(2,1,1)
  tsforecast forecast --input revenue.csv --model arima --p 2 --d 1 --q 1

  # Holt-Winters with monthly seasonality
  tsforecast forecast --input revenue.csv --class triple --seasonal-period 12 --horizon 24`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyPreferences(cmd, opts)
			return runForecast(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input CSV file (required)")
	cmd.Flags().StringVar(&opts.ValueColumn, "value-column", "value", "Name of the value column")
	cmd.Flags().StringVar(&opts.TimestampColumn, "timestamp-column", "", "Name of the timestamp column")

	cmd.Flags().StringVarP(&opts.ModelKind, "model", "m", constants.ModelKindSmoothing, "Model kind (arima, exponential_smoothing, or the aliases ses, holt, holt-winters)")

	cmd.Flags().IntVar(&opts.P, "p", 1, "AR order")
	cmd.Flags().IntVar(&opts.D, "d", 1, "Differencing order")
	cmd.Flags().IntVar(&opts.Q, "q", 1, "MA order")

	cmd.Flags().StringVar(&opts.ModelClass, "class", constants.SmoothingDouble, "Smoothing class (simple, double, triple)")
	cmd.Flags().Float64Var(&opts.Alpha, "alpha", 0, "Level smoothing parameter (0 = optimize)")
	cmd.Flags().Float64Var(&opts.Beta, "beta", 0, "Trend smoothing parameter")
	cmd.Flags().Float64Var(&opts.Gamma, "gamma", 0, "Seasonal smoothing parameter")
	cmd.Flags().BoolVar(&opts.AutoOptimize, "auto-optimize", true, "Grid-search the smoothing parameters")
	cmd.Flags().StringVar(&opts.SeasonalType, "seasonal-type", "", "Seasonal type (additive, multiplicative)")
	cmd.Flags().IntVar(&opts.SeasonalPeriod, "seasonal-period", 0, "Seasonal period for triple smoothing")
	cmd.Flags().Float64Var(&opts.Damping, "damping", 0, "Trend damping factor (0 = disabled)")

	cmd.Flags().IntVar(&opts.Horizon, "horizon", constants.DefaultHorizon, "Number of periods to forecast")
	cmd.Flags().StringVar(&opts.OutputFormat, "format", "text", "Output format (text, json)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	cmd.MarkFlagRequired("input")

	return cmd
}

// applyPreferences fills flags the user left unset from the CLI config
// file. Explicit flags always win.
func applyPreferences(cmd *cobra.Command, opts *ForecastOptions) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return
	}
	if !cmd.Flags().Changed("horizon") && cfg.Preferences.Horizon > 0 {
		opts.Horizon = cfg.Preferences.Horizon
	}
	if !cmd.Flags().Changed("model") && cfg.Preferences.ModelKind != "" {
		opts.ModelKind = cfg.Preferences.ModelKind
	}
	if !cmd.Flags().Changed("seasonal-period") && cfg.Preferences.SeasonalPeriod > 0 {
		opts.SeasonalPeriod = cfg.Preferences.SeasonalPeriod
	}
	if !cmd.Flags().Changed("format") && cfg.DefaultFormat != "" {
		opts.OutputFormat = cfg.DefaultFormat
	}
}

func runForecast(stdout io.Writer, opts *ForecastOptions) error {
	csvOpts := timeseries.DefaultCSVOptions()
	csvOpts.ValueColumn = opts.ValueColumn
	csvOpts.TimestampColumn = opts.TimestampColumn

	series, err := timeseries.LoadCSV(opts.InputFile, csvOpts)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.InputFile, err)
	}

	modelCfg, err := opts.modelConfig()
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	engine := forecast.NewEngine(logger)
	result, err := engine.Analyze(context.Background(), series, modelCfg, opts.Horizon)
	if err != nil {
		return err
	}

	out, cleanup, err := openOutput(stdout, opts.OutputFile)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.OutputFormat == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printResult(out, result)
	return nil
}

func (opts *ForecastOptions) modelConfig() (*models.ModelConfig, error) {
	// Friendly aliases select both the kind and the smoothing class.
	switch opts.ModelKind {
	case "ses":
		opts.ModelKind = constants.ModelKindSmoothing
		opts.ModelClass = constants.SmoothingSimple
	case "holt":
		opts.ModelKind = constants.ModelKindSmoothing
		opts.ModelClass = constants.SmoothingDouble
	case "holt-winters":
		opts.ModelKind = constants.ModelKindSmoothing
		opts.ModelClass = constants.SmoothingTriple
	}

	switch opts.ModelKind {
	case constants.ModelKindARIMA:
		return &models.ModelConfig{
			Kind:  constants.ModelKindARIMA,
			ARIMA: &models.ARIMAConfig{P: opts.P, D: opts.D, Q: opts.Q},
		}, nil

	case constants.ModelKindSmoothing:
		cfg := &models.SmoothingConfig{
			ModelClass:     opts.ModelClass,
			Alpha:          opts.Alpha,
			Beta:           opts.Beta,
			Gamma:          opts.Gamma,
			SeasonalType:   opts.SeasonalType,
			SeasonalPeriod: opts.SeasonalPeriod,
			AutoOptimize:   opts.AutoOptimize || opts.Alpha == 0,
		}
		if opts.Damping > 0 {
			cfg.Damping = &models.DampingConfig{Enabled: true, Factor: opts.Damping}
		}
		return &models.ModelConfig{Kind: constants.ModelKindSmoothing, Smoothing: cfg}, nil

	default:
		return nil, fmt.Errorf("unknown model kind %q", opts.ModelKind)
	}
}

func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func printResult(w io.Writer, result *models.AnalysisResult) {
	fmt.Fprintf(w, "Model: %s\n", result.Model)
	if result.Field != "" {
		fmt.Fprintf(w, "Field: %s\n", result.Field)
	}
	fmt.Fprintf(w, "Observations: %d\n", len(result.OriginalData))

	if result.Optimized != nil {
		fmt.Fprintf(w, "\nOptimized Parameters:\n")
		fmt.Fprintf(w, "  alpha: %.4f\n", result.Optimized.Alpha)
		if result.Optimized.Beta != 0 {
			fmt.Fprintf(w, "  beta:  %.4f\n", result.Optimized.Beta)
		}
		if result.Optimized.Gamma != 0 {
			fmt.Fprintf(w, "  gamma: %.4f\n", result.Optimized.Gamma)
		}
		if result.Optimized.Phi != 0 {
			fmt.Fprintf(w, "  phi:   %.4f\n", result.Optimized.Phi)
		}
	}

	if result.Metrics != nil {
		fmt.Fprintf(w, "\nGoodness of Fit:\n")
		fmt.Fprintf(w, "  AIC:  %.4f\n", result.Metrics.AIC)
		fmt.Fprintf(w, "  BIC:  %.4f\n", result.Metrics.BIC)
		fmt.Fprintf(w, "  RMSE: %.4f\n", result.Metrics.RMSE)
		fmt.Fprintf(w, "  MAE:  %.4f\n", result.Metrics.MAE)
		fmt.Fprintf(w, "  MAPE: %.2f%%\n", result.Metrics.MAPE)
		fmt.Fprintf(w, "  R2:   %.4f\n", result.Metrics.R2)
	}

	if result.Diagnostics != nil {
		fmt.Fprintf(w, "\nDiagnostics:\n")
		fmt.Fprintf(w, "  Stationary: %v\n", result.Diagnostics.Stationary)
		fmt.Fprintf(w, "  Ljung-Box:  %.4f\n", result.Diagnostics.LjungBox)
	}

	if result.Forecast != nil && len(result.Forecast.Forecast) > 0 {
		fmt.Fprintf(w, "\nForecast (95%% interval):\n")
		fmt.Fprintf(w, "  %-6s %-12s %-12s %-12s\n", "Step", "Point", "Lower", "Upper")
		fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 44))
		for i := range result.Forecast.Forecast {
			fmt.Fprintf(w, "  %-6d %-12.4f %-12.4f %-12.4f\n",
				i+1, result.Forecast.Forecast[i], result.Forecast.Lower[i], result.Forecast.Upper[i])
		}
	}
}
