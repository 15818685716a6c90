package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// =============================================================================
// Parametric VaR (normal distribution)
// =============================================================================

// ParametricVaR computes the (1-confidence) quantile of N(mu, sigma*sqrt(h))
// and scales it by exposure (amount x fx).
// The mean is not scaled by the horizon.
func ParametricVaR(mu, sigma, confidence float64, horizon int, exposure float64) (Quantile, error) {
	if !isFinite(confidence) || confidence <= 0 || confidence >= 1 {
		return Quantile{}, fmt.Errorf("%w: confidence %v must be in (0, 1)", ErrInvalidRequest, confidence)
	}
	if horizon < 1 {
		return Quantile{}, fmt.Errorf("%w: horizon %d must be at least 1", ErrInvalidRequest, horizon)
	}
	if !isFinite(mu) || !isFinite(sigma) || sigma < 0 {
		return Quantile{}, fmt.Errorf("%w: mu=%v sigma=%v", ErrInvalidRequest, mu, sigma)
	}
	if sigma == 0 {
		return Quantile{}, ErrZeroVolatility
	}

	alpha := 1 - confidence
	sigmaH := sigma * math.Sqrt(float64(horizon))

	dist := distuv.Normal{Mu: mu, Sigma: sigmaH}
	z := distuv.UnitNormal.Quantile(alpha)
	ret := dist.Quantile(alpha)

	// E[R | R <= q] = mu - sigma_h * phi(z) / alpha
	shortfall := mu - sigmaH*distuv.UnitNormal.Prob(z)/alpha

	return Quantile{
		Confidence:        confidence,
		Horizon:           horizon,
		Mu:                mu,
		Sigma:             sigma,
		SigmaH:            sigmaH,
		Z:                 z,
		Return:            ret,
		Shortfall:         shortfall,
		VaR:               ret * exposure,
		ExpectedShortfall: shortfall * exposure,
	}, nil
}
