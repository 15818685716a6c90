package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// weightSumTolerance is how far a weight vector may sum from 1
const weightSumTolerance = 1e-6

// UniformWeights returns n weights of 1/n
func UniformWeights(n int) []float64 {
	if n <= 0 {
		return nil
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

// ValidateWeights rejects a vector of the wrong length, with negative or
// non-finite entries, or whose sum differs from 1 by more than 1e-6.
// Malformed weights are never replaced by uniform ones.
func ValidateWeights(w []float64, n int) error {
	if len(w) != n {
		return fmt.Errorf("%w: got %d weights for %d tickers", ErrInvalidWeights, len(w), n)
	}
	for i, v := range w {
		if !isFinite(v) {
			return fmt.Errorf("%w: weight %d is not a finite number", ErrInvalidWeights, i+1)
		}
		if v < 0 {
			return fmt.Errorf("%w: weight %d is negative", ErrInvalidWeights, i+1)
		}
	}
	if sum := floats.Sum(w); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.6f, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// PortfolioStats returns mu = sum(w_i * mean_i) and sigma = sqrt(w' cov w)
func PortfolioStats(means []float64, cov *mat.SymDense, w []float64) (mu, sigma float64, err error) {
	n := len(w)
	if len(means) != n || cov == nil || cov.SymmetricDim() != n {
		return 0, 0, fmt.Errorf("%w: dimension mismatch (%d weights, %d means)", ErrInvalidWeights, n, len(means))
	}

	mu = floats.Dot(w, means)

	wv := mat.NewVecDense(n, append([]float64(nil), w...))
	variance := mat.Inner(wv, cov, wv)
	if variance < 0 {
		// round-off on a PD matrix
		variance = 0
	}
	sigma = math.Sqrt(variance)

	return mu, sigma, nil
}
