package smoothing

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/trendlens/tsforecast/internal/forecast/stats"
	"github.com/trendlens/tsforecast/pkg/constants"
	"github.com/trendlens/tsforecast/pkg/models"
)

// optimize grid-searches the smoothing parameters to minimize AIC over the
// fitted residuals. The nesting order is fixed (alpha outer, then beta,
// gamma, damping) so AIC ties resolve to the first combination encountered
// and results stay reproducible. Combinations producing non-finite scores
// are skipped and can never win.
func (e *Estimator) optimize(series []float64) (parameters, *models.OptimizedParams) {
	alphas := gridValues(constants.GridAlphaMin, constants.GridAlphaMax, constants.GridAlphaSteps)

	betas := []float64{e.config.Beta}
	if e.config.ModelClass != constants.SmoothingSimple {
		betas = gridValues(constants.GridBetaMin, constants.GridBetaMax, constants.GridBetaSteps)
	}

	gammas := []float64{e.config.Gamma}
	if e.config.ModelClass == constants.SmoothingTriple {
		gammas = gridValues(constants.GridGammaMin, constants.GridGammaMax, constants.GridGammaSteps)
	}

	phis := []float64{e.config.Phi()}
	if e.config.Damping != nil && e.config.Damping.Enabled {
		phis = gridValues(constants.GridPhiMin, constants.GridPhiMax, constants.GridPhiSteps)
	}

	best := parameters{alpha: e.config.Alpha, beta: e.config.Beta, gamma: e.config.Gamma, phi: e.config.Phi()}
	bestScore := math.Inf(1)
	evaluated := 0

	for _, alpha := range alphas {
		for _, beta := range betas {
			for _, gamma := range gammas {
				for _, phi := range phis {
					candidate := parameters{alpha: alpha, beta: beta, gamma: gamma, phi: phi}
					model := e.fitWithParams(series, candidate)
					score := stats.AIC(stats.MSE(model.Residuals), len(model.Residuals), model.ParamCount)
					evaluated++

					if math.IsNaN(score) || math.IsInf(score, 0) {
						continue
					}
					if score < bestScore {
						bestScore = score
						best = candidate
					}
				}
			}
		}
	}

	e.logger.WithFields(logrus.Fields{
		"class":     e.config.ModelClass,
		"evaluated": evaluated,
		"alpha":     best.alpha,
		"beta":      best.beta,
		"gamma":     best.gamma,
		"phi":       best.phi,
		"aic":       bestScore,
	}).Debug("Smoothing parameter grid search completed")

	optimized := &models.OptimizedParams{Alpha: best.alpha, AIC: bestScore}
	if math.IsInf(bestScore, 1) {
		optimized.AIC = 0
	}
	if e.config.ModelClass != constants.SmoothingSimple {
		optimized.Beta = best.beta
	}
	if e.config.ModelClass == constants.SmoothingTriple {
		optimized.Gamma = best.gamma
	}
	if e.config.Damping != nil && e.config.Damping.Enabled {
		optimized.Phi = best.phi
	}

	return best, optimized
}

// gridValues returns steps evenly spaced values across [min, max]
// inclusive.
func gridValues(min, max float64, steps int) []float64 {
	if steps <= 1 {
		return []float64{min}
	}
	values := make([]float64, steps)
	width := (max - min) / float64(steps-1)
	for i := 0; i < steps; i++ {
		values[i] = min + float64(i)*width
	}
	return values
}
